package tasks

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/constants"
	"github.com/MaxConsolas/marzban-shop/internal/locale"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// PanelClient is the slice of the panel access client the scheduler needs
type PanelClient interface {
	Authenticate(ctx context.Context) error
	Users(ctx context.Context) ([]models.PanelUser, error)
}

// UserResolver maps panel usernames back to local VPN users
type UserResolver interface {
	FindByVPNUsername(username string) (*models.VPNUser, error)
}

// Chat sends notifications and resolves profile data from the messaging
// platform
type Chat interface {
	SendText(chatID int64, text string) error
	MemberInfo(telegramID int64) (firstName string, languageCode string, err error)
}

// Notifier runs the time-triggered scans over panel users. One user's
// failure never aborts a scan.
type Notifier struct {
	panel  PanelClient
	users  UserResolver
	chat   Chat
	logger *logrus.Logger
	now    func() time.Time
}

// NewNotifier creates a notifier
func NewNotifier(panel PanelClient, users UserResolver, chat Chat, logger *logrus.Logger) *Notifier {
	return &Notifier{
		panel:  panel,
		users:  users,
		chat:   chat,
		logger: logger,
		now:    time.Now,
	}
}

// NotifyRenewals messages every panel user whose subscription expires
// within the renewal window. The wording switches between "today" and
// "tomorrow" depending on how close the expiry is.
func (n *Notifier) NotifyRenewals(ctx context.Context) {
	panelUsers, err := n.panel.Users(ctx)
	if err != nil {
		n.logger.Errorf("Renewal scan failed to list panel users: %v", err)
		return
	}

	now := n.now().Unix()
	windowEnd := now + int64(constants.RenewWindow.Seconds())
	todayLimit := now + int64(constants.RenewTodayLimit.Seconds())

	for _, panelUser := range panelUsers {
		if panelUser.Status == models.PanelStatusDisabled {
			continue
		}
		if panelUser.Expire == 0 || panelUser.Expire <= now || panelUser.Expire >= windowEnd {
			continue
		}

		dayKey := locale.KeyTomorrow
		if panelUser.Expire < todayLimit {
			dayKey = locale.KeyToday
		}
		n.notify(panelUser.Username, locale.KeyRenewReminder, dayKey)
	}
}

// NotifyExpired messages every panel user whose subscription lapsed
// within the past day
func (n *Notifier) NotifyExpired(ctx context.Context) {
	panelUsers, err := n.panel.Users(ctx)
	if err != nil {
		n.logger.Errorf("Expiry scan failed to list panel users: %v", err)
		return
	}

	now := n.now().Unix()
	windowStart := now - int64(constants.ExpiredWindow.Seconds())

	for _, panelUser := range panelUsers {
		if panelUser.Status == models.PanelStatusDisabled {
			continue
		}
		if panelUser.Expire == 0 || panelUser.Expire <= windowStart || panelUser.Expire >= now {
			continue
		}
		n.notify(panelUser.Username, locale.KeyExpiredNotice, "")
	}
}

// notify resolves one panel user to a chat and sends the phrase; failures
// are logged and swallowed so the scan continues
func (n *Notifier) notify(username, phraseKey, dayKey string) {
	vpnUser, err := n.users.FindByVPNUsername(username)
	if err != nil {
		n.logger.Debugf("Panel user %s has no local profile, skipping", username)
		return
	}

	name, lang, err := n.chat.MemberInfo(vpnUser.TelegramID)
	if err != nil {
		n.logger.Errorf("Failed to resolve profile for user %d: %v", vpnUser.TelegramID, err)
		return
	}

	values := locale.Values{"name": name}
	if dayKey != "" {
		values["day"] = locale.Translate(lang, dayKey, nil)
	}
	text := locale.Translate(lang, phraseKey, values)

	if err := n.chat.SendText(vpnUser.TelegramID, text); err != nil {
		n.logger.Errorf("Failed to notify user %d: %v", vpnUser.TelegramID, err)
	}
}
