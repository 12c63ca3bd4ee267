package goods

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// Catalog serves the immutable product list from goods.json. The file is
// re-read when its modification time changes, so price edits do not need
// a restart.
type Catalog struct {
	path         string
	fallbackPath string
	mu           sync.Mutex
	items        []models.Product
	mtime        time.Time
	logger       *logrus.Logger
}

// NewCatalog creates a catalog backed by the given goods file
func NewCatalog(path string, logger *logrus.Logger) *Catalog {
	return &Catalog{
		path:         path,
		fallbackPath: fallbackFor(path),
		logger:       logger,
	}
}

// All returns every product in catalog order
func (c *Catalog) All() ([]models.Product, error) {
	return c.load()
}

// ByCallback returns the product with the given callback id
func (c *Catalog) ByCallback(callback string) (*models.Product, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Callback == callback {
			return &items[i], nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "product", Key: callback}
}

// load reads the goods file, serving the cached copy while the file is
// unchanged
func (c *Catalog) load() ([]models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.path
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		path = c.fallbackPath
		if info, err = os.Stat(path); err == nil {
			c.logger.Warnf("Goods file %s not found, using %s as fallback", c.path, path)
		}
	}
	if err != nil {
		return nil, &apperrors.ConfigError{Section: "goods", Message: "goods file not found: " + c.path}
	}

	if c.items != nil && info.ModTime().Equal(c.mtime) {
		return c.items, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.ConfigError{Section: "goods", Message: err.Error()}
	}

	var items []models.Product
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &apperrors.ConfigError{Section: "goods", Message: "invalid goods file: " + err.Error()}
	}

	c.items = items
	c.mtime = info.ModTime()
	c.logger.Debugf("Loaded %d products from %s", len(items), path)
	return items, nil
}

// fallbackFor derives the example-file path next to the configured one
func fallbackFor(path string) string {
	if ext := ".json"; strings.HasSuffix(path, ext) {
		return strings.TrimSuffix(path, ext) + ".example" + ext
	}
	return path + ".example"
}
