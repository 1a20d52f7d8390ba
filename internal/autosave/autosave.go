// Package autosave debounces editor changes into single writes and tracks
// the save indicator shown to the operator.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"glow/internal/invitation"
	"glow/pkg/logger"
)

const (
	DefaultDelay      = 2 * time.Second
	DefaultResetDelay = 2 * time.Second
	DefaultTimeout    = 10 * time.Second
)

type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

var (
	ErrSaveInFlight = errors.New("a save is already in progress")
	ErrStopped      = errors.New("autosave stopped")
)

// Persister writes a full snapshot of the record.
type Persister interface {
	Persist(ctx context.Context, data invitation.Data) error
}

type PersistFunc func(ctx context.Context, data invitation.Data) error

func (f PersistFunc) Persist(ctx context.Context, data invitation.Data) error { return f(ctx, data) }

type Options struct {
	Delay      time.Duration
	ResetDelay time.Duration
	Timeout    time.Duration
}

// Saver coalesces Touch calls: the snapshot passed to the last Touch inside
// a Delay window is written once.
type Saver struct {
	p    Persister
	opts Options

	mu       sync.Mutex
	pending  *invitation.Data
	timer    *time.Timer
	reset    *time.Timer
	status   Status
	stopped  bool
	gen      uint64
	written  uint64
	onStatus []func(Status)

	// writeMu serialises writes; explicit saves use TryLock on it.
	writeMu sync.Mutex
}

func New(p Persister, opts Options) *Saver {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.ResetDelay <= 0 {
		opts.ResetDelay = DefaultResetDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Saver{p: p, opts: opts, status: StatusIdle}
}

// OnStatus registers an observer for indicator changes.
func (s *Saver) OnStatus(fn func(Status)) {
	s.mu.Lock()
	s.onStatus = append(s.onStatus, fn)
	s.mu.Unlock()
}

func (s *Saver) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// setStatus must be called with mu held; it returns the observers to notify.
func (s *Saver) setStatus(st Status) []func(Status) {
	if s.status == st {
		return nil
	}
	s.status = st
	return append([]func(Status){}, s.onStatus...)
}

func notify(fns []func(Status), st Status) {
	for _, fn := range fns {
		fn(st)
	}
}

// Touch records a new snapshot and restarts the debounce window.
func (s *Saver) Touch(data invitation.Data) {
	snap := data.Clone()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = &snap
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.reset != nil {
		s.reset.Stop()
		s.reset = nil
	}
	s.timer = time.AfterFunc(s.opts.Delay, s.fire)
	fns := s.setStatus(StatusSaving)
	s.mu.Unlock()

	notify(fns, StatusSaving)
}

func (s *Saver) fire() {
	s.mu.Lock()
	if s.stopped || s.pending == nil {
		s.mu.Unlock()
		return
	}
	snap, g := *s.pending, s.gen
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	stale := g <= s.written
	s.mu.Unlock()
	if stale {
		return
	}

	err := s.write(snap)
	s.finish(g, err)
}

func (s *Saver) write(snap invitation.Data) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
	defer cancel()
	return s.p.Persist(ctx, snap)
}

func (s *Saver) finish(g uint64, err error) {
	s.mu.Lock()
	if err == nil && g > s.written {
		s.written = g
	}
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if s.pending != nil {
		// a newer edit arrived while writing; its timer will report.
		s.mu.Unlock()
		if err != nil {
			logger.LogError("Autosave failed: %v", err)
		}
		return
	}
	var fns []func(Status)
	var st Status
	if err != nil {
		logger.LogError("Autosave failed: %v", err)
		st = StatusError
	} else {
		st = StatusSaved
		s.reset = time.AfterFunc(s.opts.ResetDelay, s.backToIdle)
	}
	fns = s.setStatus(st)
	s.mu.Unlock()

	notify(fns, st)
}

func (s *Saver) backToIdle() {
	s.mu.Lock()
	if s.stopped || s.status != StatusSaved {
		s.mu.Unlock()
		return
	}
	s.reset = nil
	fns := s.setStatus(StatusIdle)
	s.mu.Unlock()
	notify(fns, StatusIdle)
}

// Flush writes data immediately, dropping any pending debounced write. It
// fails with ErrSaveInFlight when another write is running.
func (s *Saver) Flush(ctx context.Context, data invitation.Data) error {
	if !s.writeMu.TryLock() {
		return ErrSaveInFlight
	}
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	g := s.gen
	fns := s.setStatus(StatusSaving)
	s.mu.Unlock()
	notify(fns, StatusSaving)

	err := s.p.Persist(ctx, data.Clone())
	s.finish(g, err)
	return err
}

// Discard drops the pending snapshot and its timer. The saver keeps
// accepting Touch calls.
func (s *Saver) Discard() {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	var fns []func(Status)
	if !s.stopped {
		fns = s.setStatus(StatusIdle)
	}
	s.mu.Unlock()
	notify(fns, StatusIdle)
}

// Stop cancels every timer. Pending edits are discarded.
func (s *Saver) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.reset != nil {
		s.reset.Stop()
		s.reset = nil
	}
	s.status = StatusIdle
}
