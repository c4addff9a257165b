package sync

import (
	"time"

	"github.com/google/uuid"

	"github.com/ventahub/ventahub-backend/internal/channels"
	"github.com/ventahub/ventahub-backend/pkg/auth"
	"github.com/ventahub/ventahub-backend/pkg/enums"
	"github.com/ventahub/ventahub-backend/pkg/types"
)

// SyncInput carries one orchestration request.
type SyncInput struct {
	Identity  auth.Identity
	AccountID uuid.UUID
	Resource  enums.SyncResource
	Direction enums.SyncDirection
	ChannelID *uuid.UUID
}

// ChannelResult is one channel's outcome within a sync batch.
type ChannelResult struct {
	ChannelID   uuid.UUID         `json:"channel_id"`
	ChannelType enums.ChannelType `json:"channel_type"`
	Success     bool              `json:"success"`
	Count       int               `json:"count"`
	Message     string            `json:"message,omitempty"`
}

// SyncResult is the batch outcome. AggregateSuccess is true when at least one
// channel succeeded.
type SyncResult struct {
	Resource         enums.SyncResource  `json:"resource"`
	Direction        enums.SyncDirection `json:"direction"`
	AggregateSuccess bool                `json:"aggregate_success"`
	Results          []ChannelResult     `json:"results"`
}

// LogView is one sync log row as returned to clients.
type LogView struct {
	ID        uuid.UUID           `json:"id"`
	EventType string              `json:"event_type"`
	Status    enums.SyncLogStatus `json:"status"`
	Payload   types.JSONMap       `json:"payload,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// StatusView is the sync dashboard payload: recent log entries plus the
// current health of every channel on the account.
type StatusView struct {
	Logs     []LogView              `json:"logs"`
	Channels []channels.ChannelView `json:"channels"`
}
