package concord4

import (
	"hash/fnv"
	"sync"

	"github.com/caarlos0/concord4/superbus"
)

const shardCount = 16

type shard[V comparable] struct {
	mu sync.RWMutex
	m  map[string]V
}

// stripedMap is a lock-striped map: readers of one key never contend with
// writers of another, and a snapshot copy only holds one shard lock at a
// time.
type stripedMap[V comparable] struct {
	shards [shardCount]shard[V]
}

func newStripedMap[V comparable]() *stripedMap[V] {
	s := &stripedMap[V]{}
	for i := range s.shards {
		s.shards[i].m = map[string]V{}
	}
	return s
}

func (s *stripedMap[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}

// upsert stores merge(old) under key and reports whether the stored value
// differs from what was there. The compare happens under the shard lock, so
// upsert+compare is atomic per key.
func (s *stripedMap[V]) upsert(key string, merge func(old V, ok bool) V) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	old, ok := sh.m[key]
	v := merge(old, ok)
	if ok && v == old {
		return v, false
	}
	sh.m[key] = v
	return v, true
}

func (s *stripedMap[V]) get(key string) (V, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	v, ok := sh.m[key]
	return v, ok
}

func (s *stripedMap[V]) snapshot() map[string]V {
	out := map[string]V{}
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k, v := range sh.m {
			out[k] = v
		}
		sh.mu.RUnlock()
	}
	return out
}

// store owns every PanelData/ZoneData/PartitionData instance. Only the
// engine's read loop mutates it; everyone else gets copies.
type store struct {
	panelMu sync.RWMutex
	panel   PanelData

	zones      *stripedMap[ZoneData]
	partitions *stripedMap[PartitionData]
}

func newStore() *store {
	return &store{
		zones:      newStripedMap[ZoneData](),
		partitions: newStripedMap[PartitionData](),
	}
}

// apply merges one decoded message into the mirror. It returns the change
// to broadcast, or false when the message carried no news: re-announcing an
// unchanged zone or partition is suppressed so periodic refreshes don't
// turn into notification storms.
func (st *store) apply(msg superbus.Message) (Change, bool) {
	switch m := msg.(type) {
	case superbus.PanelType:
		// a panel announcement replaces the panel record and always emits.
		return st.updatePanel(func(p *PanelData) bool {
			p.Model = PanelModel(m.Type)
			return true
		})
	case superbus.TimeDate:
		clock := PanelClock{
			Hour:   m.Hour,
			Minute: m.Minute,
			Month:  m.Month,
			Day:    m.Day,
			Year:   m.Year,
		}
		return st.updatePanel(func(p *PanelData) bool {
			if p.Clock == clock {
				return false
			}
			p.Clock = clock
			return true
		})
	case superbus.AlarmTrouble:
		trouble := Trouble{General: m.General, Specific: m.Specific}
		return st.updatePanel(func(p *PanelData) bool {
			if p.Trouble == trouble {
				return false
			}
			p.Trouble = trouble
			return true
		})
	case superbus.EventLost:
		return st.updatePanel(func(p *PanelData) bool {
			p.EventsLost++
			return true
		})
	case superbus.ZoneData:
		id := ZoneID(m.Partition, m.Zone)
		v, changed := st.zones.upsert(id, func(ZoneData, bool) ZoneData {
			return ZoneData{
				ID:        id,
				Partition: m.Partition,
				Area:      m.Area,
				Group:     m.Group,
				Zone:      m.Zone,
				Type:      ZoneType(m.Type),
				Status:    ZoneStatus(m.Status),
				Name:      m.Text,
			}
		})
		if !changed {
			return nil, false
		}
		return ZoneChange{Zone: v}, true
	case superbus.ZoneStatus:
		id := ZoneID(m.Partition, m.Zone)
		v, changed := st.zones.upsert(id, func(old ZoneData, ok bool) ZoneData {
			if !ok {
				// status for a zone the list hasn't described yet; keep the
				// update, the list row fills in name and type later.
				old = ZoneData{
					ID:        id,
					Partition: m.Partition,
					Area:      m.Area,
					Zone:      m.Zone,
				}
			}
			old.Status = ZoneStatus(m.Status)
			return old
		})
		if !changed {
			return nil, false
		}
		return ZoneChange{Zone: v}, true
	case superbus.PartitionData:
		id := PartitionID(m.Partition)
		v, changed := st.partitions.upsert(id, func(PartitionData, bool) PartitionData {
			return PartitionData{
				ID:        id,
				Partition: m.Partition,
				Area:      m.Area,
				Level:     levelFromPartition(m.Level),
			}
		})
		if !changed {
			return nil, false
		}
		return PartitionChange{Partition: v}, true
	case superbus.ArmingLevel:
		id := PartitionID(m.Partition)
		v, changed := st.partitions.upsert(id, func(old PartitionData, ok bool) PartitionData {
			if !ok {
				old = PartitionData{ID: id, Partition: m.Partition, Area: m.Area}
			}
			old.Level = levelFromStatus(m.Level)
			return old
		})
		if !changed {
			return nil, false
		}
		return PartitionChange{Partition: v}, true
	}
	return nil, false
}

func (st *store) updatePanel(mutate func(*PanelData) bool) (Change, bool) {
	st.panelMu.Lock()
	changed := mutate(&st.panel)
	p := st.panel
	st.panelMu.Unlock()
	if !changed {
		return nil, false
	}
	return PanelChange{Panel: p}, true
}

func (st *store) snapshot() PublicState {
	st.panelMu.RLock()
	p := st.panel
	st.panelMu.RUnlock()
	return PublicState{
		Panel:      p,
		Zones:      st.zones.snapshot(),
		Partitions: st.partitions.snapshot(),
	}
}
