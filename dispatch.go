package concord4

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/caarlos0/concord4/superbus"
	"github.com/cenkalti/backoff/v4"
)

// command is one queued outbound message plus the channel its caller is
// blocked on.
type command struct {
	msg  superbus.Sendable
	done chan error
}

// dispatcher serializes outbound traffic. The link is half duplex at the
// protocol level: one command is on the wire at a time, and the next ctrl
// byte from the panel answers it. Raw ACK/NAK replies we owe the panel for
// its own frames take the priority lane so inbound traffic keeps flowing
// while a command waits for its acknowledgement.
type dispatcher struct {
	w        io.Writer
	queue    chan command
	ctrl     chan bool
	replies  chan byte
	attempts int
	timeout  time.Duration
	fatal    func(error)
}

func newDispatcher(w io.Writer, attempts int, timeout time.Duration, fatal func(error)) *dispatcher {
	return &dispatcher{
		w:        w,
		queue:    make(chan command, 32),
		ctrl:     make(chan bool, 1),
		replies:  make(chan byte, 64),
		attempts: attempts,
		timeout:  timeout,
		fatal:    fatal,
	}
}

// control routes a decoded Ack or Nak to whatever command is awaiting it.
// A ctrl byte with nobody waiting is stale and gets dropped.
func (d *dispatcher) control(ack bool) {
	select {
	case d.ctrl <- ack:
	default:
		log.Debug("dropping unexpected ctrl byte", "ack", ack)
	}
}

// reply queues a raw ctrl byte answering an inbound frame.
func (d *dispatcher) reply(b byte) {
	select {
	case d.replies <- b:
	default:
		// the panel retransmits unacknowledged frames, so a dropped reply
		// only costs a round trip.
		log.Warn("reply lane full, dropping ctrl byte")
	}
}

func (d *dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case b := <-d.replies:
			_ = d.write([]byte{b})
		case cmd := <-d.queue:
			d.transmit(ctx, cmd)
		}
	}
}

// drain fails every command still queued at shutdown.
func (d *dispatcher) drain() {
	for {
		select {
		case cmd := <-d.queue:
			cmd.done <- ErrClosed
		default:
			return
		}
	}
}

func (d *dispatcher) transmit(ctx context.Context, cmd command) {
	frame := superbus.Encode(cmd.msg.Payload())

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	for attempt := 1; attempt <= d.attempts; attempt++ {
		if attempt > 1 {
			t := time.NewTimer(bo.NextBackOff())
			select {
			case <-ctx.Done():
				t.Stop()
				cmd.done <- ErrClosed
				return
			case <-t.C:
			}
		}

		// a ctrl byte left over from a timed-out attempt must not satisfy
		// this one.
		select {
		case <-d.ctrl:
		default:
		}

		if err := d.write(frame); err != nil {
			cmd.done <- err
			return
		}

		deadline := time.NewTimer(d.timeout)
	waiting:
		for {
			select {
			case <-ctx.Done():
				deadline.Stop()
				cmd.done <- ErrClosed
				return
			case b := <-d.replies:
				// keep acknowledging inbound frames while we wait.
				if err := d.write([]byte{b}); err != nil {
					deadline.Stop()
					cmd.done <- err
					return
				}
			case ack := <-d.ctrl:
				deadline.Stop()
				if ack {
					cmd.done <- nil
					return
				}
				log.Warn("send: NAK", "attempt", attempt)
				break waiting
			case <-deadline.C:
				log.Warn("send: ack timeout", "attempt", attempt, "timeout", d.timeout)
				break waiting
			}
		}
	}

	cmd.done <- fmt.Errorf("%w after %d attempts", ErrNoAck, d.attempts)
}

func (d *dispatcher) write(p []byte) error {
	if _, err := d.w.Write(p); err != nil {
		err = fmt.Errorf("transport write: %w", err)
		d.fatal(err)
		return err
	}
	return nil
}
