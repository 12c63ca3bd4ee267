package errors

import (
	"fmt"
)

// GatewayDisabledError represents an attempt to use a payment gateway
// whose credentials are not configured
type GatewayDisabledError struct {
	Gateway string
}

// Error returns the error message
func (e *GatewayDisabledError) Error() string {
	return fmt.Sprintf("payment gateway %s is not configured", e.Gateway)
}

// GatewayRequestError represents a network or HTTP failure while creating
// a payment intent with an external gateway
type GatewayRequestError struct {
	Gateway string
	Status  int
	Message string
}

// Error returns the error message
func (e *GatewayRequestError) Error() string {
	return fmt.Sprintf("gateway %s request failed (status %d): %s", e.Gateway, e.Status, e.Message)
}

// PanelAuthError represents a panel authentication failure that persisted
// after a re-authentication retry
type PanelAuthError struct {
	Operation string
	Message   string
}

// Error returns the error message
func (e *PanelAuthError) Error() string {
	return fmt.Sprintf("panel authentication failed during %s: %s", e.Operation, e.Message)
}

// PanelRequestError represents a non-auth failure from the panel API
type PanelRequestError struct {
	Operation string
	Status    int
	Message   string
}

// Error returns the error message
func (e *PanelRequestError) Error() string {
	return fmt.Sprintf("panel API error during %s (status %d): %s", e.Operation, e.Status, e.Message)
}

// WebhookAuthError represents a webhook delivery rejected for a bad
// source IP or payload signature
type WebhookAuthError struct {
	Gateway string
	Reason  string
}

// Error returns the error message
func (e *WebhookAuthError) Error() string {
	return fmt.Sprintf("webhook from %s rejected: %s", e.Gateway, e.Reason)
}

// NotFoundError represents a lookup with no match; callers treat it as
// "nothing to do" rather than a system fault
type NotFoundError struct {
	Entity string
	Key    string
}

// Error returns the error message
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// ConfigError represents an error related to configuration
type ConfigError struct {
	Section string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Section, e.Message)
}
