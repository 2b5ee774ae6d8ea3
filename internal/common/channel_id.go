package common

import (
	"fmt"
)

// ChannelID identifies one PalmServiceBridge instance to the native side.
type ChannelID uint64

func (c ChannelID) String() string {
	return fmt.Sprintf("%d", uint64(c))
}

// ChannelIDFromFloat converts a JS number back into a ChannelID. Non-positive and
// fractional values are rejected.
func ChannelIDFromFloat(f float64) (ChannelID, bool) {
	if f < 1 || f != float64(uint64(f)) {
		return 0, false
	}
	return ChannelID(f), true
}
