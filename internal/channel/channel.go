// Package channel manages inbound messaging channel configurations.
// Each channel binds a vendor account to a callback endpoint and holds
// the secrets needed to authenticate deliveries from that vendor.
package channel

import "time"

// ProviderWhatsAppBusiness is the provider key for WhatsApp Business
// Cloud API channels.
const ProviderWhatsAppBusiness = "whatsapp_business"

// Channel is a configured inbound integration.
type Channel struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Provider      string    `json:"provider"`
	CallbackID    string    `json:"callback_id"`
	AppSecret     string    `json:"-"`
	VerifyToken   string    `json:"-"`
	PhoneNumberID string    `json:"phone_number_id"`
	SupportGroup  string    `json:"support_group"`
	Disabled      bool      `json:"disabled"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput holds the fields required to register a channel.
type CreateInput struct {
	Name          string `json:"name" validate:"required"`
	Provider      string `json:"provider"`
	AppSecret     string `json:"app_secret" validate:"required"`
	VerifyToken   string `json:"verify_token"`
	PhoneNumberID string `json:"phone_number_id"`
	SupportGroup  string `json:"support_group"`
}
