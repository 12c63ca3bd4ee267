package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/helpers"
	"github.com/MaxConsolas/marzban-shop/internal/locale"
	"github.com/MaxConsolas/marzban-shop/internal/models"
	"github.com/MaxConsolas/marzban-shop/internal/payments"
)

// Gateway outcome statuses. Anything else keeps the record pending for a
// later callback.
const (
	yookassaStatusSucceeded = "succeeded"
	yookassaStatusCanceled  = "canceled"

	cryptomusStatusPaid     = "paid"
	cryptomusStatusPaidOver = "paid_over"
	cryptomusStatusCancel   = "cancel"
)

// yookassaEvent is the card gateway's webhook body
type yookassaEvent struct {
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

// handleYookassa reconciles a card gateway callback. Calls are trusted
// once the source IP is verified; there is no payload signature.
func (s *Server) handleYookassa(c *gin.Context) {
	ip := clientIP(c.Request)
	if !yookassaAllowList.Allowed(ip) {
		s.logger.Warn(&apperrors.WebhookAuthError{Gateway: "yookassa", Reason: "source ip " + ip + " not allowed"})
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var event yookassaEvent
	if err := c.ShouldBindJSON(&event); err != nil || event.Object.ID == "" {
		c.Status(http.StatusOK)
		return
	}

	payment, err := s.payments.FindPayment(models.GatewayYookassa, event.Object.ID)
	if err != nil {
		// Already reconciled or unknown: replay guard, acknowledge
		c.Status(http.StatusOK)
		return
	}

	switch event.Object.Status {
	case yookassaStatusSucceeded:
		if err := s.applySuccess(c, payment); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
	case yookassaStatusCanceled:
		s.discard(payment)
	default:
		s.logger.Warnf("Ignoring yookassa status %q for payment %s", event.Object.Status, event.Object.ID)
	}

	c.Status(http.StatusOK)
}

// handleCryptomus reconciles a crypto gateway callback. Beyond the source
// IP, the payload signature must verify.
func (s *Server) handleCryptomus(c *gin.Context) {
	ip := clientIP(c.Request)
	if !cryptomusAllowList.Allowed(ip) {
		s.logger.Warn(&apperrors.WebhookAuthError{Gateway: "cryptomus", Reason: "source ip " + ip + " not allowed"})
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if s.cfg.Cryptomus == nil || !payments.VerifyCryptomusWebhook(raw, s.cfg.Cryptomus.APIKey) {
		s.logger.Warn(&apperrors.WebhookAuthError{Gateway: "cryptomus", Reason: "signature mismatch"})
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	orderID, _ := payload["order_id"].(string)
	if orderID == "" {
		c.Status(http.StatusOK)
		return
	}

	payment, err := s.payments.FindPaymentByOrderID(models.GatewayCryptomus, orderID)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	status, _ := payload["status"].(string)
	switch status {
	case cryptomusStatusPaid, cryptomusStatusPaidOver:
		if err := s.applySuccess(c, payment); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
	case cryptomusStatusCancel:
		s.discard(payment)
	default:
		s.logger.Warnf("Ignoring cryptomus status %q for order %s", status, orderID)
	}

	c.Status(http.StatusOK)
}

// applySuccess provisions access for a confirmed payment, notifies the
// paying chat, and removes the pending record. The removal is the replay
// guard, so it happens strictly after the (attempted) provisioning.
func (s *Server) applySuccess(c *gin.Context, payment *models.PendingPayment) error {
	product, err := s.catalog.ByCallback(payment.Callback)
	if err != nil {
		s.logger.Errorf("Pending payment %s references unknown product %s", payment.ExternalID, payment.Callback)
	}

	user, err := s.users.FindByTelegramID(payment.TelegramID)
	if err != nil {
		s.logger.Errorf("Pending payment %s references unknown user %d", payment.ExternalID, payment.TelegramID)
	}

	if product != nil && user != nil {
		duration := helpers.MonthsToSeconds(product.Months)
		if _, err := s.provisioner.GrantOrExtend(c.Request.Context(), user.VPNUsername, duration); err != nil {
			// Keep the record pending so the gateway's retry can finish the grant
			s.logger.Errorf("Provisioning failed for payment %s: %v", payment.ExternalID, err)
			return err
		}

		text := locale.Translate(payment.Locale, locale.KeyPaymentConfirmed, locale.Values{
			"link": s.infoLink(),
		})
		if err := s.messenger.SendHTML(payment.ChatID, text); err != nil {
			s.logger.Errorf("Failed to send confirmation to chat %d: %v", payment.ChatID, err)
		}
	}

	s.discard(payment)
	return nil
}

// discard atomically removes the pending record; losing the race to a
// concurrent delivery is not an error
func (s *Server) discard(payment *models.PendingPayment) {
	if _, err := s.payments.TakePayment(payment.Gateway, payment.ExternalID); err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Debugf("Pending payment %s already taken", payment.ExternalID)
			return
		}
		s.logger.Errorf("Failed to delete pending payment %s: %v", payment.ExternalID, err)
	}
}

// infoLink picks the channel link for the confirmation message
func (s *Server) infoLink() string {
	switch {
	case s.cfg.Telegram.InfoChannel != "":
		return s.cfg.Telegram.InfoChannel
	case s.cfg.Telegram.SupportLink != "":
		return s.cfg.Telegram.SupportLink
	default:
		return s.cfg.Telegram.RulesLink
	}
}
