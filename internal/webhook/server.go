package webhook

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// Source allow-lists published by the gateways
var (
	yookassaAllowList = NewAllowList([]string{
		"185.71.76.0/27",
		"185.71.77.0/27",
		"77.75.153.0/25",
		"77.75.156.11",
		"77.75.156.35",
		"77.75.154.128/25",
		"2a02:5180::/32",
	})
	cryptomusAllowList = NewAllowList([]string{
		"91.227.144.54",
	})
)

// Provisioner grants or extends panel access
type Provisioner interface {
	GrantOrExtend(ctx context.Context, username string, durationSeconds int64) (*models.PanelUser, error)
}

// Catalog resolves products by callback id
type Catalog interface {
	ByCallback(callback string) (*models.Product, error)
}

// UserStore resolves VPN users
type UserStore interface {
	FindByTelegramID(telegramID int64) (*models.VPNUser, error)
}

// PaymentStore is the pending-payment side of the local store
type PaymentStore interface {
	FindPayment(gateway models.GatewayKind, externalID string) (*models.PendingPayment, error)
	FindPaymentByOrderID(gateway models.GatewayKind, orderID string) (*models.PendingPayment, error)
	TakePayment(gateway models.GatewayKind, externalID string) (*models.PendingPayment, error)
}

// Messenger sends confirmation messages to the paying chat
type Messenger interface {
	SendHTML(chatID int64, text string) error
}

// Server is the inbound boundary reconciling gateway callbacks into
// idempotent subscription grants
type Server struct {
	router      *gin.Engine
	cfg         *config.Config
	payments    PaymentStore
	users       UserStore
	catalog     Catalog
	provisioner Provisioner
	messenger   Messenger
	logger      *logrus.Logger
}

// NewServer creates the webhook server and registers its routes
func NewServer(
	cfg *config.Config,
	payments PaymentStore,
	users UserStore,
	catalog Catalog,
	provisioner Provisioner,
	messenger Messenger,
	logger *logrus.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:      router,
		cfg:         cfg,
		payments:    payments,
		users:       users,
		catalog:     catalog,
		provisioner: provisioner,
		messenger:   messenger,
		logger:      logger,
	}

	router.GET("/health", s.handleHealth)
	router.POST("/yookassa_payment", s.handleYookassa)
	router.POST("/cryptomus_payment", s.handleCryptomus)

	return s
}

// Handler exposes the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves webhooks until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Webhook.Port),
		Handler:      s.router,
		ReadTimeout:  constants.WebhookReadTimeout,
		WriteTimeout: constants.WebhookWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Webhook server listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.WebhookWriteTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
