package concord4

import (
	"context"
	"testing"
	"time"

	"github.com/caarlos0/concord4/superbus"
	"github.com/stretchr/testify/require"
)

// frameLog is a transport stand-in that hands every write to the test.
type frameLog struct{ ch chan []byte }

func newFrameLog() *frameLog { return &frameLog{ch: make(chan []byte, 16)} }

func (w *frameLog) Write(p []byte) (int, error) {
	w.ch <- append([]byte(nil), p...)
	return len(p), nil
}

func (w *frameLog) next(t *testing.T) []byte {
	t.Helper()
	select {
	case p := <-w.ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("nothing was written")
		return nil
	}
}

func startDispatcher(t *testing.T, attempts int, timeout time.Duration) (*dispatcher, *frameLog) {
	t.Helper()
	w := newFrameLog()
	d := newDispatcher(w, attempts, timeout, func(error) {})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.run(ctx)
	return d, w
}

func enqueue(d *dispatcher, msg superbus.Sendable) chan error {
	cmd := command{msg: msg, done: make(chan error, 1)}
	d.queue <- cmd
	return cmd.done
}

func await(t *testing.T, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("command never finished")
		return nil
	}
}

func TestDispatchAck(t *testing.T) {
	d, w := startDispatcher(t, 3, time.Second)

	done := enqueue(d, superbus.Refresh{})
	require.Equal(t, superbus.Encode([]byte{0x20}), w.next(t))
	d.control(true)
	require.NoError(t, await(t, done))
}

func TestDispatchTimeoutRetries(t *testing.T) {
	d, w := startDispatcher(t, 2, 20*time.Millisecond)

	done := enqueue(d, superbus.Refresh{})
	want := superbus.Encode([]byte{0x20})
	require.Equal(t, want, w.next(t))
	require.Equal(t, want, w.next(t))
	require.ErrorIs(t, await(t, done), ErrNoAck)
}

func TestDispatchNakExhaustsThenMovesOn(t *testing.T) {
	d, w := startDispatcher(t, 3, time.Second)

	done := enqueue(d, superbus.Refresh{})
	for i := 0; i < 3; i++ {
		w.next(t)
		d.control(false)
	}
	require.ErrorIs(t, await(t, done), ErrNoAck)

	// a failed command must not wedge the queue.
	done = enqueue(d, superbus.List{Request: superbus.ListZoneData})
	require.Equal(t, superbus.Encode([]byte{0x02, 0x03}), w.next(t))
	d.control(true)
	require.NoError(t, await(t, done))
}

func TestDispatchRepliesFlowWhileWaiting(t *testing.T) {
	d, w := startDispatcher(t, 3, time.Second)

	done := enqueue(d, superbus.Refresh{})
	w.next(t)

	// an inbound frame needs its ACK even though our own command is still
	// unanswered.
	d.reply(superbus.CtrlAck)
	require.Equal(t, []byte{superbus.CtrlAck}, w.next(t))

	d.control(true)
	require.NoError(t, await(t, done))
}

func TestDispatchStaleCtrlIgnored(t *testing.T) {
	d, w := startDispatcher(t, 1, 50*time.Millisecond)

	// an ack left over from earlier traffic must not satisfy the next
	// command.
	d.control(true)
	done := enqueue(d, superbus.Refresh{})
	w.next(t)
	require.ErrorIs(t, await(t, done), ErrNoAck)
}

func TestDispatchShutdownFailsQueued(t *testing.T) {
	w := newFrameLog()
	d := newDispatcher(w, 3, time.Second, func(error) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := enqueue(d, superbus.Refresh{})
	go d.run(ctx)
	require.ErrorIs(t, await(t, done), ErrClosed)
}
