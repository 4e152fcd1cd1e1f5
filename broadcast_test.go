package concord4

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroadcastFanOut(t *testing.T) {
	b := newBroadcaster()
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()

	want := ZoneChange{Zone: ZoneData{ID: "p1-z1"}}
	b.publish(want)

	require.Equal(t, Change(want), <-sub1.C())
	require.Equal(t, Change(want), <-sub2.C())
}

func TestBroadcastDropsOldest(t *testing.T) {
	b := newBroadcaster()
	sub := b.Subscribe()

	const extra = 5
	for i := 0; i < subscriberBacklog+extra; i++ {
		b.publish(PartitionChange{Partition: PartitionData{Partition: uint8(i)}})
	}

	// the oldest events made room for the newest; publish never blocked.
	require.Equal(t, uint64(extra), sub.Missed())
	first := <-sub.C()
	require.Equal(t, uint8(extra), first.(PartitionChange).Partition.Partition)
}

func TestBroadcastSlowSubscriberDoesNotStallOthers(t *testing.T) {
	b := newBroadcaster()
	slow := b.Subscribe()
	fast := b.Subscribe()

	for i := 0; i < subscriberBacklog*2; i++ {
		b.publish(PanelChange{Panel: PanelData{EventsLost: uint32(i)}})
		<-fast.C()
	}

	require.Zero(t, fast.Missed())
	require.NotZero(t, slow.Missed())
}

func TestBroadcastClose(t *testing.T) {
	b := newBroadcaster()
	sub := b.Subscribe()
	sub.Close()
	sub.Close() // idempotent

	_, open := <-sub.C()
	require.False(t, open)

	// closed subscriptions no longer receive.
	b.publish(PanelChange{})
}

func TestBroadcastShutdown(t *testing.T) {
	b := newBroadcaster()
	sub := b.Subscribe()
	b.closeAll()

	_, open := <-sub.C()
	require.False(t, open)

	// subscribing after shutdown yields an already-closed channel.
	late := b.Subscribe()
	_, open = <-late.C()
	require.False(t, open)
}
