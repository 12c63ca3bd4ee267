package marzban

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// Client drives the Marzban panel's user-provisioning API. The bearer
// token is process-wide state: it lives in an expiring cache and is
// replaced whenever a call is rejected for authorization. Concurrent
// refreshes are serialized by refreshMu; last writer wins.
type Client struct {
	httpClient *resty.Client
	cfg        config.PanelConfig
	tokens     *cache.Cache
	refreshMu  sync.Mutex
	proxies    map[string]models.Proxy
	inbounds   map[string][]string
	logger     *logrus.Logger
	now        func() time.Time
}

// authResponse is the panel's credential-exchange response
type authResponse struct {
	AccessToken string `json:"access_token"`
}

// NewClient creates a new Marzban API client
func NewClient(cfg config.PanelConfig, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.Host).
		SetTimeout(constants.DefaultTimeout)

	proxies, inbounds := buildProtocols(cfg.Protocols)

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		tokens:     cache.New(constants.TokenCacheTTL, constants.TokenCleanupPeriod),
		proxies:    proxies,
		inbounds:   inbounds,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate exchanges the configured panel credentials for a fresh
// bearer token and stores it for subsequent calls
func (c *Client) Authenticate(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refreshLocked(ctx)
}

// refreshLocked performs the credential exchange; the caller must hold
// refreshMu
func (c *Client) refreshLocked(ctx context.Context) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"username": c.cfg.User,
			"password": c.cfg.Password,
		}).
		Post("/api/admin/token")

	if err != nil {
		return &apperrors.PanelAuthError{Operation: "authenticate", Message: err.Error()}
	}
	if resp.StatusCode() != http.StatusOK {
		return &apperrors.PanelAuthError{
			Operation: "authenticate",
			Message:   fmt.Sprintf("status %d: %s", resp.StatusCode(), resp.Body()),
		}
	}

	var auth authResponse
	if err := json.Unmarshal(resp.Body(), &auth); err != nil {
		return &apperrors.PanelAuthError{Operation: "authenticate", Message: "invalid auth response: " + err.Error()}
	}
	if auth.AccessToken == "" {
		return &apperrors.PanelAuthError{Operation: "authenticate", Message: "no access token in response"}
	}

	c.tokens.Set(constants.TokenCacheKey, auth.AccessToken, cache.DefaultExpiration)
	c.logger.Debug("Marzban token refreshed")
	return nil
}

// token returns the cached bearer token, authenticating first if the
// cache is empty or expired
func (c *Client) token(ctx context.Context) (string, error) {
	if tok, found := c.tokens.Get(constants.TokenCacheKey); found {
		return tok.(string), nil
	}
	if err := c.Authenticate(ctx); err != nil {
		return "", err
	}
	tok, found := c.tokens.Get(constants.TokenCacheKey)
	if !found {
		return "", &apperrors.PanelAuthError{Operation: "authenticate", Message: "token missing after refresh"}
	}
	return tok.(string), nil
}

// do executes a panel API call with the current token. On a 401/403
// response it re-authenticates exactly once and retries the same call;
// a second authorization failure is fatal for the operation.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out interface{}) error {
	tok, err := c.token(ctx)
	if err != nil {
		return err
	}

	resp, err := c.execute(ctx, method, path, tok, body)
	if err != nil {
		return &apperrors.PanelRequestError{Operation: operation, Message: err.Error()}
	}

	if isAuthFailure(resp.StatusCode()) {
		c.logger.Warnf("Marzban token rejected during %s, refreshing", operation)
		if err := c.Authenticate(ctx); err != nil {
			return err
		}
		tok, err = c.token(ctx)
		if err != nil {
			return err
		}
		resp, err = c.execute(ctx, method, path, tok, body)
		if err != nil {
			return &apperrors.PanelRequestError{Operation: operation, Message: err.Error()}
		}
		if isAuthFailure(resp.StatusCode()) {
			return &apperrors.PanelAuthError{
				Operation: operation,
				Message:   fmt.Sprintf("still rejected after refresh (status %d)", resp.StatusCode()),
			}
		}
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return &apperrors.NotFoundError{Entity: "panel user", Key: path}
	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		return &apperrors.PanelRequestError{
			Operation: operation,
			Status:    resp.StatusCode(),
			Message:   string(resp.Body()),
		}
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &apperrors.PanelRequestError{Operation: operation, Message: "invalid response: " + err.Error()}
		}
	}
	return nil
}

// execute performs a single HTTP round trip with the given token
func (c *Client) execute(ctx context.Context, method, path, token string, body interface{}) (*resty.Response, error) {
	req := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return req.Execute(method, path)
}

// isAuthFailure reports whether the panel rejected the token
func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// GetUser fetches the provisioning record for the given panel username
func (c *Client) GetUser(ctx context.Context, username string) (*models.PanelUser, error) {
	var user models.PanelUser
	if err := c.do(ctx, "get user", http.MethodGet, "/api/user/"+username, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users lists every user known to the panel
func (c *Client) Users(ctx context.Context) ([]models.PanelUser, error) {
	var list models.PanelUserList
	if err := c.do(ctx, "list users", http.MethodGet, "/api/users", nil, &list); err != nil {
		return nil, err
	}
	return list.Users, nil
}

// CreateUser registers a new panel user
func (c *Client) CreateUser(ctx context.Context, user *models.PanelUser) (*models.PanelUser, error) {
	var created models.PanelUser
	if err := c.do(ctx, "create user", http.MethodPost, "/api/user", user, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ModifyUser updates an existing panel user
func (c *Client) ModifyUser(ctx context.Context, username string, user *models.PanelUser) (*models.PanelUser, error) {
	var modified models.PanelUser
	if err := c.do(ctx, "modify user", http.MethodPut, "/api/user/"+username, user, &modified); err != nil {
		return nil, err
	}
	return &modified, nil
}

// UserExists reports whether the panel knows the given username,
// treating a not-found lookup as false and re-raising any other error
func (c *Client) UserExists(ctx context.Context, username string) (bool, error) {
	_, err := c.GetUser(ctx, username)
	if err == nil {
		return true, nil
	}
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

// SubscriptionURL builds the public subscription link for a panel user
func (c *Client) SubscriptionURL(user *models.PanelUser) string {
	return c.cfg.GlobalURL + user.SubscriptionURL
}
