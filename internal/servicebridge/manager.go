package servicebridge

import (
	"github.com/hack-pad/palmshim/internal/common"
	"github.com/hack-pad/palmshim/internal/log"
	"github.com/hack-pad/palmshim/internal/native"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/atomic"
)

const minChannelID = 0

// Manager owns the channel id counter and the set of live channels for one bridge.
type Manager struct {
	bridge   native.Bridge
	lastID   *atomic.Uint64
	channels *xsync.Map[common.ChannelID, *Channel]
}

func NewManager(bridge native.Bridge) *Manager {
	return &Manager{
		bridge:   bridge,
		lastID:   atomic.NewUint64(minChannelID),
		channels: xsync.NewMap[common.ChannelID, *Channel](),
	}
}

func (m *Manager) reserveID() common.ChannelID {
	return common.ChannelID(m.lastID.Inc())
}

// NewChannel allocates the next id and registers it with the native side. Registration
// failures are not reported; the native side is trusted.
func (m *Manager) NewChannel() *Channel {
	c := &Channel{
		id:      m.reserveID(),
		manager: m,
		handler: discardResult,
		state:   StateCreated,
	}
	m.channels.Store(c.id, c)
	log.Debugf("service bridge %s: create", c.id)
	m.bridge.Exec(nil, nil, native.PalmServiceBridge, native.OpCreateInstance, c.wireID())
	return c
}

// Lookup finds a live channel.
func (m *Manager) Lookup(id common.ChannelID) (*Channel, bool) {
	return m.channels.Load(id)
}

// Len is the number of channels created and not yet destroyed.
func (m *Manager) Len() int {
	return m.channels.Size()
}
