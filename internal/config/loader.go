package config

import (
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PROTOCOLS", "vless")
	v.SetDefault("PERIOD_LIMIT", 72)
	v.SetDefault("SHOP_NAME", "VPN Shop")
	v.SetDefault("WEBHOOK_PORT", 8080)
	v.SetDefault("STORAGE_FILE", "shop_data.json")
	v.SetDefault("GOODS_FILE", "goods.json")

	// Define environment variables
	for _, key := range []string{
		"BOT_TOKEN", "BOT_USERNAME", "SHOP_NAME", "PROTOCOLS",
		"TEST_PERIOD", "PERIOD_LIMIT", "RULES_LINK", "SUPPORT_LINK",
		"PANEL_HOST", "PANEL_GLOBAL", "PANEL_USER", "PANEL_PASS",
		"WEBHOOK_URL", "WEBHOOK_PORT",
		"YOOKASSA_TOKEN", "YOOKASSA_SHOPID", "EMAIL",
		"CRYPTO_TOKEN", "MERCHANT_UUID",
		"RENEW_NOTIFICATION_TIME", "EXPIRED_NOTIFICATION_TIME",
		"TG_INFO_CHANEL", "STARS_PAYMENT_ENABLED",
		"STORAGE_FILE", "GOODS_FILE", "LOG_LEVEL",
	} {
		v.BindEnv(key)
	}

	cfg := &Config{
		LogLevel: v.GetString("LOG_LEVEL"),
		Telegram: TelegramConfig{
			Token:        v.GetString("BOT_TOKEN"),
			BotUsername:  v.GetString("BOT_USERNAME"),
			InfoChannel:  v.GetString("TG_INFO_CHANEL"),
			SupportLink:  v.GetString("SUPPORT_LINK"),
			RulesLink:    v.GetString("RULES_LINK"),
			StarsEnabled: parseBool(v.GetString("STARS_PAYMENT_ENABLED")),
		},
		Panel: PanelConfig{
			Host:      strings.TrimRight(v.GetString("PANEL_HOST"), "/"),
			GlobalURL: strings.TrimRight(v.GetString("PANEL_GLOBAL"), "/"),
			User:      v.GetString("PANEL_USER"),
			Password:  v.GetString("PANEL_PASS"),
			Protocols: parseProtocols(v.GetString("PROTOCOLS")),
		},
		Webhook: WebhookConfig{
			URL:  strings.TrimRight(v.GetString("WEBHOOK_URL"), "/"),
			Port: v.GetInt("WEBHOOK_PORT"),
		},
		Shop: ShopConfig{
			Name:             v.GetString("SHOP_NAME"),
			TrialEnabled:     parseBool(v.GetString("TEST_PERIOD")),
			TrialPeriodHours: v.GetInt("PERIOD_LIMIT"),
			GoodsFile:        v.GetString("GOODS_FILE"),
		},
		Notify: NotifyConfig{
			RenewTime:   v.GetString("RENEW_NOTIFICATION_TIME"),
			ExpiredTime: v.GetString("EXPIRED_NOTIFICATION_TIME"),
		},
		Storage: StorageConfig{
			File: v.GetString("STORAGE_FILE"),
		},
	}

	// Gateways stay disabled unless both credentials are present
	if shopID, secret := v.GetString("YOOKASSA_SHOPID"), v.GetString("YOOKASSA_TOKEN"); shopID != "" && secret != "" {
		cfg.Yookassa = &YookassaConfig{
			ShopID:    shopID,
			SecretKey: secret,
			Email:     v.GetString("EMAIL"),
		}
	}
	if merchant, key := v.GetString("MERCHANT_UUID"), v.GetString("CRYPTO_TOKEN"); merchant != "" && key != "" {
		cfg.Cryptomus = &CryptomusConfig{
			MerchantUUID: merchant,
			APIKey:       key,
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks the required configuration sections
func validate(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return &apperrors.ConfigError{Section: "telegram", Message: "BOT_TOKEN is required"}
	}
	if cfg.Panel.Host == "" || cfg.Panel.User == "" || cfg.Panel.Password == "" {
		return &apperrors.ConfigError{Section: "panel", Message: "PANEL_HOST, PANEL_USER and PANEL_PASS are required"}
	}
	if cfg.Panel.GlobalURL == "" {
		return &apperrors.ConfigError{Section: "panel", Message: "PANEL_GLOBAL is required"}
	}
	if cfg.Webhook.URL == "" {
		return &apperrors.ConfigError{Section: "webhook", Message: "WEBHOOK_URL is required"}
	}
	if cfg.Shop.TrialPeriodHours <= 0 {
		return &apperrors.ConfigError{Section: "shop", Message: "PERIOD_LIMIT must be positive"}
	}
	return nil
}

// parseProtocols splits the whitespace-separated protocol list and lowercases it
func parseProtocols(raw string) []string {
	fields := strings.Fields(raw)
	protocols := make([]string, 0, len(fields))
	for _, f := range fields {
		protocols = append(protocols, strings.ToLower(f))
	}
	return protocols
}

// parseBool accepts the truthy spellings used in the environment files
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
