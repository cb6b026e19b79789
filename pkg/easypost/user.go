package easypost

import (
	"context"
	"net/http"
	"time"
)

// User is an EasyPost account or one of its child accounts.
type User struct {
	ID                      string     `json:"id,omitempty"`
	CreatedAt               *time.Time `json:"created_at,omitempty"`
	UpdatedAt               *time.Time `json:"updated_at,omitempty"`
	ParentID                string     `json:"parent_id,omitempty"`
	Name                    string     `json:"name,omitempty"`
	Email                   string     `json:"email,omitempty"`
	PhoneNumber             string     `json:"phone_number,omitempty"`
	Balance                 string     `json:"balance,omitempty"`
	RechargeAmount          string     `json:"recharge_amount,omitempty"`
	SecondaryRechargeAmount string     `json:"secondary_recharge_amount,omitempty"`
	RechargeThreshold       string     `json:"recharge_threshold,omitempty"`
	Children                []*User    `json:"children,omitempty"`
	APIKeys                 []*APIKey  `json:"api_keys,omitempty"`
}

// GetSelf retrieves the user owning the API key.
func (c *Client) GetSelf(ctx context.Context) (*User, error) {
	return Execute[User](ctx, c, NewRequest(http.MethodGet, "users"))
}

// GetUser retrieves a user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	req := NewRequest(http.MethodGet, "users/{id}").
		AddURLSegment("id", id)
	return Execute[User](ctx, c, req)
}

// CreateUser creates a child user.
func (c *Client) CreateUser(ctx context.Context, name string) (*User, error) {
	req := NewRequest(http.MethodPost, "users").
		SetBody(map[string]any{"user": map[string]string{"name": name}})
	return Execute[User](ctx, c, req)
}

// UpdateUser saves the editable fields of user. Empty fields are left unchanged.
func (c *Client) UpdateUser(ctx context.Context, user *User) (*User, error) {
	fields := map[string]string{}
	for key, value := range map[string]string{
		"name":                      user.Name,
		"email":                     user.Email,
		"phone_number":              user.PhoneNumber,
		"recharge_amount":           user.RechargeAmount,
		"secondary_recharge_amount": user.SecondaryRechargeAmount,
		"recharge_threshold":        user.RechargeThreshold,
	} {
		if value != "" {
			fields[key] = value
		}
	}

	req := NewRequest(http.MethodPut, "users/{id}").
		AddURLSegment("id", user.ID).
		SetBody(map[string]any{"user": fields})
	return Execute[User](ctx, c, req)
}

// DestroyUser deletes a child user.
func (c *Client) DestroyUser(ctx context.Context, id string) error {
	req := NewRequest(http.MethodDelete, "users/{id}").
		AddURLSegment("id", id)
	return Exec(ctx, c, req)
}
