package enums

// ChannelStatus reflects the last known health of a channel connection.
//
// disconnected --(connect with valid credential)--> connected
// connected    --(failed test or failed sync)-----> error
// error        --(successful test)---------------> connected
type ChannelStatus string

const (
	ChannelStatusDisconnected ChannelStatus = "disconnected"
	ChannelStatusConnected    ChannelStatus = "connected"
	ChannelStatusError        ChannelStatus = "error"
)

// String implements fmt.Stringer.
func (c ChannelStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChannelStatus.
func (c ChannelStatus) IsValid() bool {
	switch c {
	case ChannelStatusDisconnected, ChannelStatusConnected, ChannelStatusError:
		return true
	default:
		return false
	}
}
