package telegrambot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
	"github.com/MaxConsolas/marzban-shop/internal/handlers"
)

// Bot wraps the Telegram bot and exposes the messaging operations the
// webhook router and scheduler need
type Bot struct {
	bot    *telebot.Bot
	config *config.Config
	logger *logrus.Logger
}

// NewBot creates a new Telegram bot and registers the storefront handler
func NewBot(cfg *config.Config, shop *handlers.ShopHandler, logger *logrus.Logger) (*Bot, error) {
	settings := telebot.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: constants.TelegramPollTimeout},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
		},
	}

	b, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		config: cfg,
		logger: logger,
	}

	bot.setupMiddleware()
	shop.Register(b)

	return bot, nil
}

// Start runs the bot until the context is cancelled
func (b *Bot) Start(ctx context.Context) {
	b.logger.Info("Starting Telegram bot")

	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	b.bot.Start()
}

// setupMiddleware sets up the bot middleware
func (b *Bot) setupMiddleware() {
	b.bot.Use(func(next telebot.HandlerFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			if sender := c.Sender(); sender != nil {
				b.logger.Debugf("Update from %d: %s", sender.ID, c.Text())
			}
			return next(c)
		}
	})
}

// Username returns the bot's public username
func (b *Bot) Username() string {
	return b.bot.Me.Username
}

// SendHTML sends an HTML-formatted message to a chat
func (b *Bot) SendHTML(chatID int64, text string) error {
	_, err := b.bot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		ParseMode: telebot.ModeHTML,
	})
	return err
}

// SendText sends a plain message to a chat
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.bot.Send(&telebot.Chat{ID: chatID}, text)
	return err
}

// MemberInfo resolves a user's first name and language code from the
// messaging platform
func (b *Bot) MemberInfo(telegramID int64) (string, string, error) {
	member, err := b.bot.ChatMemberOf(&telebot.Chat{ID: telegramID}, &telebot.User{ID: telegramID})
	if err != nil {
		return "", "", err
	}
	return member.User.FirstName, member.User.LanguageCode, nil
}
