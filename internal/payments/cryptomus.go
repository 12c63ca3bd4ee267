package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/helpers"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// Cryptomus is the crypto gateway adapter
type Cryptomus struct {
	cfg        *config.CryptomusConfig
	httpClient *resty.Client
	store      PendingStore
	webhookURL string
	apiURL     string
	logger     *logrus.Logger
	now        func() time.Time
}

// cryptomusResponse wraps the gateway's invoice-creation result
type cryptomusResponse struct {
	Result struct {
		URL     string          `json:"url"`
		Amount  json.RawMessage `json:"amount"`
		OrderID string          `json:"order_id"`
		UUID    string          `json:"uuid"`
	} `json:"result"`
}

// NewCryptomus creates the crypto gateway adapter; cfg may be nil,
// leaving the adapter disabled
func NewCryptomus(cfg *config.CryptomusConfig, store PendingStore, webhookURL string, logger *logrus.Logger) *Cryptomus {
	return &Cryptomus{
		cfg:        cfg,
		httpClient: resty.New().SetTimeout(constants.GatewayTimeout),
		store:      store,
		webhookURL: webhookURL,
		apiURL:     constants.CryptomusAPIURL,
		logger:     logger,
		now:        time.Now,
	}
}

// Kind identifies the gateway
func (c *Cryptomus) Kind() models.GatewayKind {
	return models.GatewayCryptomus
}

// IsEnabled reports whether the gateway credentials are configured
func (c *Cryptomus) IsEnabled() bool {
	return c.cfg != nil
}

// OrderID derives the deterministic invoice order id for a request
func (c *Cryptomus) OrderID(telegramID int64, callback string, at time.Time) string {
	return helpers.MD5Hex(fmt.Sprintf("%d%d%s", telegramID, at.UnixMilli(), callback))
}

// CreatePayment creates an invoice and persists a pending payment keyed
// by the gateway-returned transaction id, falling back to the locally
// generated order id if absent
func (c *Cryptomus) CreatePayment(ctx context.Context, req CreateRequest) (*models.PaymentLink, error) {
	if !c.IsEnabled() {
		return nil, &apperrors.GatewayDisabledError{Gateway: string(c.Kind())}
	}

	orderID := c.OrderID(req.TelegramID, req.Product.Callback, c.now())
	payload := map[string]interface{}{
		"amount":              strconv.FormatFloat(req.Product.Price.EN, 'f', -1, 64),
		"currency":            "USD",
		"order_id":            orderID,
		"lifetime":            constants.CryptomusInvoiceLifetime,
		"url_callback":        c.webhookURL + "/cryptomus_payment",
		"is_payment_multiple": false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &apperrors.GatewayRequestError{Gateway: string(c.Kind()), Message: err.Error()}
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("merchant", c.cfg.MerchantUUID).
		SetHeader("sign", CryptomusSign(body, c.cfg.APIKey)).
		SetBody(body).
		Post(c.apiURL)

	if err != nil {
		return nil, &apperrors.GatewayRequestError{Gateway: string(c.Kind()), Message: err.Error()}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &apperrors.GatewayRequestError{
			Gateway: string(c.Kind()),
			Status:  resp.StatusCode(),
			Message: string(resp.Body()),
		}
	}

	var invoice cryptomusResponse
	if err := json.Unmarshal(resp.Body(), &invoice); err != nil {
		return nil, &apperrors.GatewayRequestError{Gateway: string(c.Kind()), Message: "invalid response: " + err.Error()}
	}
	if invoice.Result.URL == "" {
		return nil, &apperrors.GatewayRequestError{Gateway: string(c.Kind()), Message: "no invoice url in response"}
	}

	externalID := invoice.Result.OrderID
	if externalID == "" {
		externalID = invoice.Result.UUID
	}
	if externalID == "" {
		externalID = orderID
	}

	if err := c.store.InsertPayment(models.PendingPayment{
		Gateway:    c.Kind(),
		ExternalID: externalID,
		OrderID:    orderID,
		TelegramID: req.TelegramID,
		ChatID:     req.ChatID,
		Locale:     req.Locale,
		Callback:   req.Product.Callback,
	}); err != nil {
		return nil, err
	}

	c.logger.Infof("Created cryptomus invoice %s (order %s) for user %d", externalID, orderID, req.TelegramID)
	return &models.PaymentLink{URL: invoice.Result.URL, Amount: parseAmount(invoice.Result.Amount, req.Product.Price.EN)}, nil
}

// parseAmount accepts the gateway's amount either as a JSON string or a
// number
func parseAmount(raw json.RawMessage, fallback float64) float64 {
	if len(raw) == 0 {
		return fallback
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if v, err := strconv.ParseFloat(asString, 64); err == nil {
			return v
		}
		return fallback
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber
	}
	return fallback
}

var _ Gateway = (*Cryptomus)(nil)
