package concord4

import (
	"testing"

	"github.com/caarlos0/concord4/superbus"
	"github.com/stretchr/testify/require"
)

func TestStoreZoneLifecycle(t *testing.T) {
	st := newStore()

	change, ok := st.apply(superbus.ZoneData{
		Partition: 1,
		Area:      1,
		Zone:      5,
		Status:    0x00,
		Text:      "FRONT DOOR",
	})
	require.True(t, ok)
	zc, isZone := change.(ZoneChange)
	require.True(t, isZone)
	require.Equal(t, "p1-z5", zc.Zone.ID)
	require.Equal(t, "FRONT DOOR", zc.Zone.Name)
	require.Equal(t, ZoneNormal, zc.Zone.Status)

	// re-announcing the exact same zone carries no news.
	_, ok = st.apply(superbus.ZoneData{
		Partition: 1,
		Area:      1,
		Zone:      5,
		Status:    0x00,
		Text:      "FRONT DOOR",
	})
	require.False(t, ok)

	change, ok = st.apply(superbus.ZoneStatus{Partition: 1, Area: 1, Zone: 5, Status: 0x01})
	require.True(t, ok)
	require.Equal(t, ZoneTripped, change.(ZoneChange).Zone.Status)

	_, ok = st.apply(superbus.ZoneStatus{Partition: 1, Area: 1, Zone: 5, Status: 0x01})
	require.False(t, ok)
}

func TestStoreZoneStatusBeforeList(t *testing.T) {
	st := newStore()

	// a status flag for a zone the equipment list never described still
	// lands in the mirror.
	change, ok := st.apply(superbus.ZoneStatus{Partition: 2, Area: 1, Zone: 9, Status: 0x04})
	require.True(t, ok)
	zone := change.(ZoneChange).Zone
	require.Equal(t, "p2-z9", zone.ID)
	require.Equal(t, ZoneAlarm, zone.Status)
	require.Empty(t, zone.Name)

	// the list row later fills in the rest.
	change, ok = st.apply(superbus.ZoneData{
		Partition: 2,
		Area:      1,
		Zone:      9,
		Status:    0x04,
		Text:      "GARAGE",
	})
	require.True(t, ok)
	require.Equal(t, "GARAGE", change.(ZoneChange).Zone.Name)
}

func TestStorePartitionLevels(t *testing.T) {
	st := newStore()

	change, ok := st.apply(superbus.PartitionData{Partition: 1, Area: 1, Level: 0x03})
	require.True(t, ok)
	require.Equal(t, LevelAway, change.(PartitionChange).Partition.Level)

	// arming-level records use the status value table, not the equipment
	// list one.
	change, ok = st.apply(superbus.ArmingLevel{Partition: 1, Area: 1, Level: 0x01})
	require.True(t, ok)
	require.Equal(t, LevelOff, change.(PartitionChange).Partition.Level)

	_, ok = st.apply(superbus.ArmingLevel{Partition: 1, Area: 1, Level: 0x01})
	require.False(t, ok)
}

func TestStorePanel(t *testing.T) {
	st := newStore()

	change, ok := st.apply(superbus.PanelType{Type: 0x14})
	require.True(t, ok)
	require.Equal(t, ModelConcord, change.(PanelChange).Panel.Model)

	// panel announcements always emit, even when unchanged.
	_, ok = st.apply(superbus.PanelType{Type: 0x14})
	require.True(t, ok)

	clock := superbus.TimeDate{Hour: 12, Minute: 30, Month: 8, Day: 30, Year: 26}
	_, ok = st.apply(clock)
	require.True(t, ok)
	_, ok = st.apply(clock)
	require.False(t, ok)

	change, ok = st.apply(superbus.EventLost{})
	require.True(t, ok)
	require.Equal(t, uint32(1), change.(PanelChange).Panel.EventsLost)
}

func TestStoreSnapshot(t *testing.T) {
	st := newStore()
	_, _ = st.apply(superbus.PanelType{Type: 0x14})
	_, _ = st.apply(superbus.ZoneData{Partition: 1, Zone: 2, Text: "HALL"})
	_, _ = st.apply(superbus.ZoneData{Partition: 1, Zone: 1, Text: "ENTRY"})
	_, _ = st.apply(superbus.PartitionData{Partition: 1, Level: 0x01})

	snap := st.snapshot()
	require.Equal(t, ModelConcord, snap.Panel.Model)
	require.Equal(t, []string{"p1-z1", "p1-z2"}, snap.ZoneIDs())
	require.Equal(t, []string{"p1"}, snap.PartitionIDs())

	// the snapshot is a copy, not a view.
	snap.Zones["p1-z1"] = ZoneData{}
	again := st.snapshot()
	require.Equal(t, "ENTRY", again.Zones["p1-z1"].Name)
}
