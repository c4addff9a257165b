package channels

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

// ConnectInput carries a request to register a channel connection.
type ConnectInput struct {
	Identity    auth.Identity
	AccountID   uuid.UUID
	Type        enums.ChannelType
	ExternalID  string
	AccessToken string
	Config      types.JSONMap
}

// ChannelView is the channel shape returned to clients. Credentials never
// leave the service.
type ChannelView struct {
	ID         uuid.UUID           `json:"id"`
	AccountID  uuid.UUID           `json:"account_id"`
	Type       enums.ChannelType   `json:"type"`
	ExternalID string              `json:"external_id"`
	Status     enums.ChannelStatus `json:"status"`
	LastError  *string             `json:"last_error,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// TestResult reports the outcome of a connection test.
type TestResult struct {
	ChannelID uuid.UUID           `json:"channel_id"`
	Status    enums.ChannelStatus `json:"status"`
	Healthy   bool                `json:"healthy"`
	Error     string              `json:"error,omitempty"`
}
