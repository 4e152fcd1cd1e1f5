package concord4

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/concord4/superbus"
	logp "github.com/charmbracelet/log"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "concord4",
})

var (
	// ErrClosed means the engine was shut down, by Close or by a transport
	// failure, before the operation could finish.
	ErrClosed = errors.New("engine closed")

	// ErrNoAck means the panel never acknowledged a command within the
	// retry ceiling.
	ErrNoAck = errors.New("command not acknowledged")

	// ErrArmed guards arming operations: arming an already-armed partition
	// would inject the user code into a live touchpad session.
	ErrArmed = errors.New("partition is armed, disarm first")
)

const (
	defaultAckTimeout = 5 * time.Second
	defaultRetries    = 3
)

// Option tweaks engine behavior.
type Option func(*Engine)

// WithAckTimeout sets how long a transmitted command waits for its ACK
// before being retried.
func WithAckTimeout(d time.Duration) Option {
	return func(e *Engine) { e.ackTimeout = d }
}

// WithRetries sets how many times a command is transmitted before it fails
// with ErrNoAck.
func WithRetries(n int) Option {
	return func(e *Engine) { e.retries = n }
}

// Engine drives one panel over one transport. It owns the read loop, the
// state mirror, the outbound command queue and the change broadcaster, and
// shuts all of them down together on Close or on the first transport error.
type Engine struct {
	rw io.ReadWriteCloser

	ackTimeout time.Duration
	retries    int

	store *store
	boot  *bootstrap
	bcast *Broadcaster
	disp  *dispatcher

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	errMu    sync.Mutex
	err      error
}

// New starts an engine over rw, which is typically an open serial port
// configured for 9600 8-O-1. The engine immediately requests the panel's
// equipment lists and a dynamic data refresh; WaitReady blocks until that
// first image has fully arrived.
func New(rw io.ReadWriteCloser, opts ...Option) *Engine {
	e := &Engine{
		rw:         rw,
		ackTimeout: defaultAckTimeout,
		retries:    defaultRetries,
		store:      newStore(),
		boot:       newBootstrap(),
		bcast:      newBroadcaster(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.disp = newDispatcher(rw, e.retries, e.ackTimeout, e.fail)

	go e.disp.run(ctx)
	go e.readLoop(ctx)
	go func() {
		for _, msg := range e.boot.requests() {
			if err := e.Send(ctx, msg); err != nil {
				log.Error("bootstrap request failed", "err", err)
				return
			}
		}
	}()
	return e
}

func (e *Engine) readLoop(ctx context.Context) {
	var scanner superbus.Scanner
	buf := make([]byte, 4096)
	for {
		n, err := e.rw.Read(buf)
		if n > 0 {
			for _, tok := range scanner.Feed(buf[:n]) {
				e.handle(ctx, tok)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				e.fail(ErrClosed)
				return
			}
			e.fail(fmt.Errorf("transport read: %w", err))
			return
		}
	}
}

func (e *Engine) handle(ctx context.Context, tok superbus.Token) {
	switch t := tok.(type) {
	case superbus.Ack:
		e.disp.control(true)
	case superbus.Nak:
		e.disp.control(false)
	case superbus.BadFrame:
		e.disp.reply(superbus.CtrlNak)
	case superbus.Frame:
		e.disp.reply(superbus.CtrlAck)
		msg := superbus.Decode(t)
		if u, ok := msg.(superbus.Unknown); ok {
			log.Debug("recv: unhandled message", "raw", fmt.Sprintf("% x", u.Raw))
			return
		}
		e.boot.observe(msg)
		if change, ok := e.store.apply(msg); ok {
			e.bcast.publish(change)
		}
		if _, ok := msg.(superbus.EventLost); ok {
			log.Warn("panel dropped automation traffic, refreshing")
			go func() {
				if err := e.Send(ctx, superbus.Refresh{}); err != nil {
					log.Error("refresh after event loss failed", "err", err)
				}
			}()
		}
	}
}

// Send encodes msg, transmits it and blocks until the panel acknowledges
// it, the retry ceiling is hit, ctx is canceled, or the engine shuts down.
// Commands are delivered to the wire strictly in Send order.
func (e *Engine) Send(ctx context.Context, msg superbus.Sendable) error {
	cmd := command{msg: msg, done: make(chan error, 1)}
	select {
	case e.disp.queue <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return e.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return e.Err()
	}
}

// WaitReady blocks until the initial panel image has fully arrived, ctx is
// canceled, or the engine shuts down.
func (e *Engine) WaitReady(ctx context.Context) error {
	select {
	case <-e.boot.readyc():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return e.Err()
	}
}

// Snapshot returns a caller-owned copy of the current panel image.
func (e *Engine) Snapshot() PublicState {
	st := e.store.snapshot()
	st.Initialized = e.boot.complete()
	return st
}

// Subscribe registers a new change-event receiver.
func (e *Engine) Subscribe() *Subscription { return e.bcast.Subscribe() }

// Arm arms partition to the given level by injecting the matching keypress
// sequence followed by code. It refuses with ErrArmed when the partition is
// already armed.
func (e *Engine) Arm(ctx context.Context, partition uint8, level ArmingLevel, code string) error {
	var key byte
	switch level {
	case LevelStay:
		key = 0x02
	case LevelAway:
		key = 0x03
	default:
		return fmt.Errorf("cannot arm to level %s", level)
	}
	if p, ok := e.store.partitions.get(PartitionID(partition)); ok && p.Level != LevelOff {
		return fmt.Errorf("%w: %s is %s", ErrArmed, p.ID, p.Level)
	}
	keys, err := codeKeys(code)
	if err != nil {
		return err
	}
	return e.Send(ctx, superbus.Keypress{
		Partition: partition,
		Keys:      append([]byte{key}, keys...),
	})
}

// Disarm disarms partition with the given user code.
func (e *Engine) Disarm(ctx context.Context, partition uint8, code string) error {
	keys, err := codeKeys(code)
	if err != nil {
		return err
	}
	return e.Send(ctx, superbus.Keypress{
		Partition: partition,
		Keys:      append([]byte{0x01}, keys...),
	})
}

// codeKeys maps a numeric user code onto touchpad key values.
func codeKeys(code string) ([]byte, error) {
	keys := make([]byte, 0, len(code))
	for _, r := range code {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("user code must be numeric")
		}
		keys = append(keys, byte(r-'0'))
	}
	return keys, nil
}

// Close shuts the engine down: the transport closes, queued commands and
// readiness waiters fail with ErrClosed, and every subscription channel
// closes. Close is idempotent.
func (e *Engine) Close() error {
	e.fail(ErrClosed)
	return nil
}

// Done closes when the engine has shut down for any reason.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Err reports why the engine shut down: ErrClosed after Close, or the
// transport error that killed it. It is nil while the engine is running.
func (e *Engine) Err() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

// fail records the first shutdown cause and tears everything down.
func (e *Engine) fail(cause error) {
	e.stopOnce.Do(func() {
		e.errMu.Lock()
		e.err = cause
		e.errMu.Unlock()
		if !errors.Is(cause, ErrClosed) {
			log.Error("engine stopping", "err", cause)
		}
		e.cancel()
		_ = e.rw.Close()
		close(e.done)
		e.bcast.closeAll()
	})
}
