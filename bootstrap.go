package concord4

import (
	"sync"
	"sync/atomic"

	"github.com/caarlos0/concord4/superbus"
)

// bootstrap tracks the initial image download. Readiness needs a panel
// announcement plus a completed zone list and partition list; the panel may
// interleave and reorder those however it likes, so each completion is
// checked off independently.
type bootstrap struct {
	mu      sync.Mutex
	pending map[superbus.ListRequest]struct{}
	panel   bool
	done    atomic.Bool
	ready   chan struct{}
}

func newBootstrap() *bootstrap {
	return &bootstrap{
		pending: map[superbus.ListRequest]struct{}{
			superbus.ListZoneData: {},
			superbus.ListPartData: {},
		},
		panel: true,
		ready: make(chan struct{}),
	}
}

// requests lists the messages that kick off the download, in send order.
func (b *bootstrap) requests() []superbus.Sendable {
	return []superbus.Sendable{
		superbus.List{Request: superbus.ListZoneData},
		superbus.List{Request: superbus.ListPartData},
		superbus.Refresh{},
	}
}

// observe checks inbound messages off against the outstanding set. Once
// everything has arrived the ready channel closes, exactly once; later
// re-announcements cannot regress readiness.
func (b *bootstrap) observe(msg superbus.Message) {
	if b.done.Load() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch m := msg.(type) {
	case superbus.PanelType:
		b.panel = false
	case superbus.EquipmentListDone:
		if m.Request == superbus.ListAllData {
			// an all-data dump covers every pending list.
			for k := range b.pending {
				delete(b.pending, k)
			}
		} else {
			delete(b.pending, m.Request)
		}
	default:
		return
	}

	if !b.panel && len(b.pending) == 0 && b.done.CompareAndSwap(false, true) {
		close(b.ready)
	}
}

func (b *bootstrap) complete() bool { return b.done.Load() }

func (b *bootstrap) readyc() <-chan struct{} { return b.ready }
