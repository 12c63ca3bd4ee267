package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/goods"
	"github.com/MaxConsolas/marzban-shop/internal/helpers"
	"github.com/MaxConsolas/marzban-shop/internal/locale"
	"github.com/MaxConsolas/marzban-shop/internal/payments"
	"github.com/MaxConsolas/marzban-shop/internal/services"
	"github.com/MaxConsolas/marzban-shop/internal/storage"
	"github.com/MaxConsolas/marzban-shop/pkg/marzban"
)

// Inline button uniques
const (
	uniquePlan  = "plan"
	uniquePay   = "pay"
	uniqueTrial = "trial"
	uniqueJoin  = "join"
	uniqueMySub = "mysub"
)

// Payment method ids carried in callback data
const (
	methodCard   = "card"
	methodCrypto = "crypto"
	methodStars  = "stars"
)

// ShopHandler drives the storefront conversation: plan selection, payment
// method selection, trial grants, and the subscription view
type ShopHandler struct {
	store     *storage.Store
	catalog   *goods.Catalog
	yookassa  payments.Gateway
	cryptomus payments.Gateway
	stars     *payments.Stars
	panel     *marzban.Client
	qrService *services.QRService
	cfg       *config.Config
	logger    *logrus.Logger
}

// NewShopHandler creates the storefront handler
func NewShopHandler(
	store *storage.Store,
	catalog *goods.Catalog,
	yookassa payments.Gateway,
	cryptomus payments.Gateway,
	stars *payments.Stars,
	panel *marzban.Client,
	qrService *services.QRService,
	cfg *config.Config,
	logger *logrus.Logger,
) *ShopHandler {
	return &ShopHandler{
		store:     store,
		catalog:   catalog,
		yookassa:  yookassa,
		cryptomus: cryptomus,
		stars:     stars,
		panel:     panel,
		qrService: qrService,
		cfg:       cfg,
		logger:    logger,
	}
}

// Register wires the handler into the bot
func (h *ShopHandler) Register(b *telebot.Bot) {
	b.Handle("/start", h.handleStart)
	b.Handle(&telebot.Btn{Unique: uniqueJoin}, h.handleJoin)
	b.Handle(&telebot.Btn{Unique: uniquePlan}, h.handlePlan)
	b.Handle(&telebot.Btn{Unique: uniquePay}, h.handlePay)
	b.Handle(&telebot.Btn{Unique: uniqueTrial}, h.handleTrial)
	b.Handle(&telebot.Btn{Unique: uniqueMySub}, h.handleMySubscription)
	b.Handle(telebot.OnCheckout, h.handleCheckout)
	b.Handle(telebot.OnPayment, h.handleStarsPayment)
}

// handleStart ensures the VPN user exists and shows the main menu
func (h *ShopHandler) handleStart(c telebot.Context) error {
	user, err := h.store.EnsureUser(c.Sender().ID)
	if err != nil {
		h.logger.Errorf("Failed to ensure user %d: %v", c.Sender().ID, err)
		return err
	}

	t := locale.Translator(c.Sender().LanguageCode)
	markup := &telebot.ReplyMarkup{}
	rows := []telebot.Row{
		markup.Row(markup.Data(t(locale.KeyBtnJoin, nil), uniqueJoin)),
		markup.Row(markup.Data(t(locale.KeyBtnMySub, nil), uniqueMySub)),
	}
	if h.cfg.Shop.TrialEnabled && !user.TrialUsed {
		rows = append(rows, markup.Row(markup.Data(t(locale.KeyBtnTrial, nil), uniqueTrial)))
	}
	markup.Inline(rows...)

	return c.Send(
		t(locale.KeyStart, locale.Values{"shop": h.cfg.Shop.Name}),
		&telebot.SendOptions{ParseMode: telebot.ModeHTML},
		markup,
	)
}

// handleJoin lists the catalog as plan buttons
func (h *ShopHandler) handleJoin(c telebot.Context) error {
	t := locale.Translator(c.Sender().LanguageCode)

	items, err := h.catalog.All()
	if err != nil {
		h.logger.Errorf("Failed to load catalog: %v", err)
		return c.Send(t(locale.KeyInvalidProduct, nil))
	}

	markup := &telebot.ReplyMarkup{}
	rows := make([]telebot.Row, 0, len(items))
	for _, product := range items {
		rows = append(rows, markup.Row(markup.Data(product.Title, uniquePlan, product.Callback)))
	}
	markup.Inline(rows...)

	return c.Edit(t(locale.KeyChoosePlan, nil), markup)
}

// handlePlan shows the payment methods enabled for the chosen plan
func (h *ShopHandler) handlePlan(c telebot.Context) error {
	t := locale.Translator(c.Sender().LanguageCode)

	product, err := h.catalog.ByCallback(c.Data())
	if err != nil {
		return c.Send(t(locale.KeyInvalidProduct, nil))
	}

	markup := &telebot.ReplyMarkup{}
	var rows []telebot.Row
	if h.yookassa.IsEnabled() {
		rows = append(rows, markup.Row(markup.Data("💳 "+fmt.Sprintf("%.0f₽", product.Price.RU), uniquePay, methodCard, product.Callback)))
	}
	if h.cryptomus.IsEnabled() {
		rows = append(rows, markup.Row(markup.Data("🪙 $"+fmt.Sprintf("%.2f", product.Price.EN), uniquePay, methodCrypto, product.Callback)))
	}
	if h.stars.IsEnabled() && product.Price.Stars > 0 {
		rows = append(rows, markup.Row(markup.Data(fmt.Sprintf("⭐ %d", product.Price.Stars), uniquePay, methodStars, product.Callback)))
	}
	markup.Inline(rows...)

	return c.Edit(t(locale.KeyChooseMethod, nil), markup)
}

// handlePay creates a payment intent on the chosen rail
func (h *ShopHandler) handlePay(c telebot.Context) error {
	t := locale.Translator(c.Sender().LanguageCode)

	parts := strings.Split(c.Data(), "|")
	if len(parts) != 2 {
		return c.Send(t(locale.KeyInvalidProduct, nil))
	}
	method, callback := parts[0], parts[1]

	product, err := h.catalog.ByCallback(callback)
	if err != nil {
		return c.Send(t(locale.KeyInvalidProduct, nil))
	}

	if method == methodStars {
		return c.Send(h.stars.Invoice(*product))
	}

	gateway := h.yookassa
	if method == methodCrypto {
		gateway = h.cryptomus
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.GatewayTimeout)
	defer cancel()

	link, err := gateway.CreatePayment(ctx, payments.CreateRequest{
		TelegramID:  c.Sender().ID,
		ChatID:      c.Chat().ID,
		Locale:      locale.Normalize(c.Sender().LanguageCode),
		Product:     *product,
		BotUsername: h.cfg.Telegram.BotUsername,
	})
	if err != nil {
		h.logger.Errorf("Payment creation failed on %s: %v", gateway.Kind(), err)
		return c.Send(t(locale.KeyPaymentFailed, nil))
	}

	return c.Send(
		t(locale.KeyPayLink, locale.Values{
			"amount": fmt.Sprintf("%.2f", link.Amount),
			"url":    link.URL,
		}),
		&telebot.SendOptions{ParseMode: telebot.ModeHTML},
	)
}

// handleTrial grants the one-off trial access
func (h *ShopHandler) handleTrial(c telebot.Context) error {
	t := locale.Translator(c.Sender().LanguageCode)

	user, err := h.store.EnsureUser(c.Sender().ID)
	if err != nil {
		return err
	}
	if user.TrialUsed {
		return c.Send(t(locale.KeyTrialAlreadyUsed, nil))
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	duration := helpers.HoursToSeconds(h.cfg.Shop.TrialPeriodHours)
	if _, err := h.panel.GrantOrExtend(ctx, user.VPNUsername, duration); err != nil {
		h.logger.Errorf("Trial grant failed for user %d: %v", user.TelegramID, err)
		return c.Send(t(locale.KeyPaymentFailed, nil))
	}
	if err := h.store.MarkTrialUsed(user.TelegramID); err != nil {
		h.logger.Errorf("Failed to mark trial used for user %d: %v", user.TelegramID, err)
	}

	return c.Send(t(locale.KeyTrialGranted, nil))
}

// handleMySubscription shows the panel account state with a QR of the
// subscription link
func (h *ShopHandler) handleMySubscription(c telebot.Context) error {
	t := locale.Translator(c.Sender().LanguageCode)

	user, err := h.store.EnsureUser(c.Sender().ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	panelUser, err := h.panel.GetUser(ctx, user.VPNUsername)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return c.Send(t(locale.KeyNoSubscription, nil))
		}
		h.logger.Errorf("Failed to fetch panel user %s: %v", user.VPNUsername, err)
		return c.Send(t(locale.KeyNoSubscription, nil))
	}

	url := h.panel.SubscriptionURL(panelUser)
	text := t(locale.KeySubscriptionInfo, locale.Values{
		"date": time.Unix(panelUser.Expire, 0).Format(constants.TimestampFormat),
		"url":  url,
	})

	if qr, err := h.qrService.SubscriptionQR(url); err == nil {
		photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(qr)), Caption: text}
		return c.Send(photo, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
	}
	return c.Send(text, &telebot.SendOptions{ParseMode: telebot.ModeHTML})
}

// handleCheckout approves a stars pre-checkout query when the product
// still exists
func (h *ShopHandler) handleCheckout(c telebot.Context) error {
	query := c.PreCheckoutQuery()
	if _, err := h.catalog.ByCallback(query.Payload); err != nil {
		t := locale.Translator(c.Sender().LanguageCode)
		return c.Accept(t(locale.KeyInvalidProduct, nil))
	}
	return c.Accept()
}

// handleStarsPayment applies a completed stars payment in-line: the
// success message is the confirmation, so no pending payment exists
func (h *ShopHandler) handleStarsPayment(c telebot.Context) error {
	payment := c.Message().Payment
	if payment == nil {
		return nil
	}

	product, err := h.catalog.ByCallback(payment.Payload)
	if err != nil {
		h.logger.Errorf("Stars payment references unknown product %s", payment.Payload)
		return nil
	}

	user, err := h.store.FindByTelegramID(c.Sender().ID)
	if err != nil {
		h.logger.Errorf("Stars payment from unknown user %d", c.Sender().ID)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	if _, err := h.panel.GrantOrExtend(ctx, user.VPNUsername, helpers.MonthsToSeconds(product.Months)); err != nil {
		h.logger.Errorf("Stars provisioning failed for user %d: %v", user.TelegramID, err)
		return err
	}
	h.logger.Infof("Applied %s payment for user %d", h.stars.Kind(), user.TelegramID)

	t := locale.Translator(c.Sender().LanguageCode)
	return c.Send(
		t(locale.KeyPaymentConfirmed, locale.Values{"link": h.infoLink()}),
		&telebot.SendOptions{ParseMode: telebot.ModeHTML},
	)
}

// infoLink picks the channel link for the confirmation message
func (h *ShopHandler) infoLink() string {
	switch {
	case h.cfg.Telegram.InfoChannel != "":
		return h.cfg.Telegram.InfoChannel
	case h.cfg.Telegram.SupportLink != "":
		return h.cfg.Telegram.SupportLink
	default:
		return h.cfg.Telegram.RulesLink
	}
}
