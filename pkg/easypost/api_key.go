package easypost

import (
	"context"
	"net/http"
	"time"
)

// APIKey is a test or production key of a user.
type APIKey struct {
	Object    string     `json:"object,omitempty"`
	Mode      string     `json:"mode,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Key       string     `json:"key,omitempty"`
}

// APIKeys lists the keys of a user and of its children.
type APIKeys struct {
	ID       string     `json:"id,omitempty"`
	Keys     []*APIKey  `json:"keys"`
	Children []*APIKeys `json:"children,omitempty"`
}

// GetAPIKeys lists the API keys visible to the client's key.
func (c *Client) GetAPIKeys(ctx context.Context) (*APIKeys, error) {
	return Execute[APIKeys](ctx, c, NewRequest(http.MethodGet, "api_keys"))
}

// CarrierAccount is a carrier integration configured on the account.
// Shipments and orders may reference accounts by id only.
type CarrierAccount struct {
	ID          string     `json:"id,omitempty"`
	Object      string     `json:"object,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	Readable    string     `json:"readable,omitempty"`
}

// ListCarrierAccounts lists the carrier accounts of the user.
func (c *Client) ListCarrierAccounts(ctx context.Context) ([]*CarrierAccount, error) {
	accounts, err := Execute[[]*CarrierAccount](ctx, c, NewRequest(http.MethodGet, "carrier_accounts"))
	if err != nil {
		return nil, err
	}
	return *accounts, nil
}
