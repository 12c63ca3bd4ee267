package models

// Panel user statuses
const (
	PanelStatusActive   = "active"
	PanelStatusDisabled = "disabled"
)

// PanelUser represents a provisioning record owned by the Marzban panel.
// Expire is unix seconds; 0 means unlimited or unset.
type PanelUser struct {
	Username               string              `json:"username"`
	Status                 string              `json:"status,omitempty"`
	Expire                 int64               `json:"expire"`
	Proxies                map[string]Proxy    `json:"proxies,omitempty"`
	Inbounds               map[string][]string `json:"inbounds,omitempty"`
	DataLimit              int64               `json:"data_limit"`
	DataLimitResetStrategy string              `json:"data_limit_reset_strategy,omitempty"`
	SubscriptionURL        string              `json:"subscription_url,omitempty"`
}

// Proxy holds per-protocol settings sent to the panel on user creation
type Proxy struct {
	Flow   string `json:"flow,omitempty"`
	Method string `json:"method,omitempty"`
}

// PanelUserList is the panel's bulk listing response
type PanelUserList struct {
	Users []PanelUser `json:"users"`
}
