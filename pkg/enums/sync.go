package enums

import "fmt"

// SyncResource names what a sync operation moves.
type SyncResource string

const (
	SyncResourceProducts  SyncResource = "products"
	SyncResourceInventory SyncResource = "inventory"
	SyncResourceOrders    SyncResource = "orders"
)

var validSyncResources = []SyncResource{
	SyncResourceProducts,
	SyncResourceInventory,
	SyncResourceOrders,
}

// String implements fmt.Stringer.
func (s SyncResource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncResource.
func (s SyncResource) IsValid() bool {
	for _, candidate := range validSyncResources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSyncResource converts raw input into a SyncResource.
func ParseSyncResource(value string) (SyncResource, error) {
	for _, candidate := range validSyncResources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync resource %q", value)
}

// SyncDirection says which way data flows relative to the local store.
type SyncDirection string

const (
	SyncDirectionFromChannel SyncDirection = "from_channel"
	SyncDirectionToChannel   SyncDirection = "to_channel"
)

// String implements fmt.Stringer.
func (s SyncDirection) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncDirection.
func (s SyncDirection) IsValid() bool {
	return s == SyncDirectionFromChannel || s == SyncDirectionToChannel
}

// ParseSyncDirection converts raw input into a SyncDirection.
func ParseSyncDirection(value string) (SyncDirection, error) {
	switch SyncDirection(value) {
	case SyncDirectionFromChannel:
		return SyncDirectionFromChannel, nil
	case SyncDirectionToChannel:
		return SyncDirectionToChannel, nil
	default:
		return "", fmt.Errorf("invalid sync direction %q", value)
	}
}

// SyncLogStatus is the terminal state recorded on a sync log row.
type SyncLogStatus string

const (
	SyncLogStatusSuccess   SyncLogStatus = "success"
	SyncLogStatusCompleted SyncLogStatus = "completed"
	SyncLogStatusError     SyncLogStatus = "error"
)

// String implements fmt.Stringer.
func (s SyncLogStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncLogStatus.
func (s SyncLogStatus) IsValid() bool {
	switch s {
	case SyncLogStatusSuccess, SyncLogStatusCompleted, SyncLogStatusError:
		return true
	default:
		return false
	}
}
