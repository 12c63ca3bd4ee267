package models

// VPNUser bridges a Telegram account and its VPN panel identity
type VPNUser struct {
	ID          int    `json:"id"`
	TelegramID  int64  `json:"tg_id"`
	VPNUsername string `json:"vpn_id"`
	TrialUsed   bool   `json:"test"`
}
