package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// Yookassa is the bank-card/SBP gateway adapter
type Yookassa struct {
	cfg        *config.YookassaConfig
	httpClient *resty.Client
	store      PendingStore
	shopName   string
	apiURL     string
	logger     *logrus.Logger
}

// yookassaPayment is the subset of the gateway's payment object we read
type yookassaPayment struct {
	ID           string `json:"id"`
	Confirmation struct {
		ConfirmationURL string `json:"confirmation_url"`
	} `json:"confirmation"`
	Amount struct {
		Value string `json:"value"`
	} `json:"amount"`
}

// NewYookassa creates the card gateway adapter; cfg may be nil, leaving
// the adapter disabled
func NewYookassa(cfg *config.YookassaConfig, store PendingStore, shopName string, logger *logrus.Logger) *Yookassa {
	return &Yookassa{
		cfg:        cfg,
		httpClient: resty.New().SetTimeout(constants.GatewayTimeout),
		store:      store,
		shopName:   shopName,
		apiURL:     constants.YookassaAPIURL,
		logger:     logger,
	}
}

// Kind identifies the gateway
func (y *Yookassa) Kind() models.GatewayKind {
	return models.GatewayYookassa
}

// IsEnabled reports whether the gateway credentials are configured
func (y *Yookassa) IsEnabled() bool {
	return y.cfg != nil
}

// CreatePayment creates a payment intent and persists a pending payment
// keyed by the gateway-assigned payment id
func (y *Yookassa) CreatePayment(ctx context.Context, req CreateRequest) (*models.PaymentLink, error) {
	if !y.IsEnabled() {
		return nil, &apperrors.GatewayDisabledError{Gateway: string(y.Kind())}
	}

	value := fmt.Sprintf("%.2f", req.Product.Price.RU)
	description := fmt.Sprintf("Подписка на VPN %s", y.shopName)
	itemDescription := fmt.Sprintf("Подписка на VPN сервис: кол-во месяцев - %d", req.Product.Months)

	payload := map[string]interface{}{
		"amount": map[string]string{
			"value":    value,
			"currency": "RUB",
		},
		"confirmation": map[string]string{
			"type":       "redirect",
			"return_url": "https://t.me/" + req.BotUsername,
		},
		"capture":             true,
		"description":         description,
		"save_payment_method": false,
		"receipt": map[string]interface{}{
			"customer": map[string]string{
				"email": y.cfg.Email,
			},
			"items": []map[string]interface{}{
				{
					"description": itemDescription,
					"quantity":    "1",
					"amount": map[string]string{
						"value":    value,
						"currency": "RUB",
					},
					"vat_code": "1",
				},
			},
		},
	}

	resp, err := y.httpClient.R().
		SetContext(ctx).
		SetBasicAuth(y.cfg.ShopID, y.cfg.SecretKey).
		SetHeader("Idempotence-Key", uuid.NewString()).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(y.apiURL)

	if err != nil {
		return nil, &apperrors.GatewayRequestError{Gateway: string(y.Kind()), Message: err.Error()}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &apperrors.GatewayRequestError{
			Gateway: string(y.Kind()),
			Status:  resp.StatusCode(),
			Message: string(resp.Body()),
		}
	}

	var payment yookassaPayment
	if err := json.Unmarshal(resp.Body(), &payment); err != nil {
		return nil, &apperrors.GatewayRequestError{Gateway: string(y.Kind()), Message: "invalid response: " + err.Error()}
	}
	if payment.ID == "" || payment.Confirmation.ConfirmationURL == "" {
		return nil, &apperrors.GatewayRequestError{Gateway: string(y.Kind()), Message: "incomplete payment object"}
	}

	if err := y.store.InsertPayment(models.PendingPayment{
		Gateway:    y.Kind(),
		ExternalID: payment.ID,
		TelegramID: req.TelegramID,
		ChatID:     req.ChatID,
		Locale:     req.Locale,
		Callback:   req.Product.Callback,
	}); err != nil {
		return nil, err
	}

	amount, err := strconv.ParseFloat(payment.Amount.Value, 64)
	if err != nil {
		amount = req.Product.Price.RU
	}

	y.logger.Infof("Created yookassa payment %s for user %d", payment.ID, req.TelegramID)
	return &models.PaymentLink{URL: payment.Confirmation.ConfirmationURL, Amount: amount}, nil
}

var _ Gateway = (*Yookassa)(nil)
