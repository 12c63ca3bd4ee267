package config

// Config represents the application configuration
type Config struct {
	Telegram  TelegramConfig
	Panel     PanelConfig
	Webhook   WebhookConfig
	Yookassa  *YookassaConfig
	Cryptomus *CryptomusConfig
	Shop      ShopConfig
	Notify    NotifyConfig
	Storage   StorageConfig
	LogLevel  string
}

// TelegramConfig holds the Telegram bot configuration
type TelegramConfig struct {
	Token        string
	BotUsername  string
	InfoChannel  string
	SupportLink  string
	RulesLink    string
	StarsEnabled bool
}

// PanelConfig holds the Marzban panel connection settings
type PanelConfig struct {
	Host      string
	GlobalURL string
	User      string
	Password  string
	Protocols []string
}

// WebhookConfig holds the inbound webhook server settings
type WebhookConfig struct {
	URL  string
	Port int
}

// YookassaConfig holds the card gateway credentials; nil means disabled
type YookassaConfig struct {
	ShopID    string
	SecretKey string
	Email     string
}

// CryptomusConfig holds the crypto gateway credentials; nil means disabled
type CryptomusConfig struct {
	MerchantUUID string
	APIKey       string
}

// ShopConfig holds storefront settings
type ShopConfig struct {
	Name             string
	TrialEnabled     bool
	TrialPeriodHours int
	GoodsFile        string
}

// NotifyConfig holds the scheduler clock times in HH:MM, empty disables a job
type NotifyConfig struct {
	RenewTime   string
	ExpiredTime string
}

// StorageConfig holds the local store settings
type StorageConfig struct {
	File string
}
