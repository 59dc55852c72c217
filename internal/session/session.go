// Package session manages the single active focus countdown. All
// timer math is wall-clock anchored and derived: remaining time is
// never stored, so a persisted session survives process restarts
// without drift.
package session

import (
	"errors"
	"math"
	"time"

	"github.com/arendt-dev/focusdeck/internal/store"
)

var ErrNoDuration = errors.New("session duration must be positive")

// Remaining is the only path to a session's remaining seconds:
// max(0, ceil(total - (elapsedBeforePause + runningInterval))).
// Callers recompute it on every tick; caching a remaining value across
// ticks reintroduces the drift this exists to prevent.
func Remaining(s *store.FocusSession, now time.Time) int {
	rem := float64(s.TotalSeconds) - elapsed(s, now)
	if rem <= 0 {
		return 0
	}
	return int(math.Ceil(rem))
}

func elapsed(s *store.FocusSession, now time.Time) float64 {
	e := float64(s.ElapsedBeforePause)
	if s.IsRunning && s.StartedAtMS > 0 {
		e += float64(now.UnixMilli()-s.StartedAtMS) / 1000
	}
	return e
}

// StartParams carries the display data denormalized at session start;
// it is not re-fetched live while the session runs.
type StartParams struct {
	CardID          string
	CardTitle       string
	BoardName       string
	PageID          string
	TimeBlockID     string
	DurationSeconds int
}

// Manager owns the active session. Constructed once at startup with
// the store injected; Load restores a session persisted by a previous
// process.
type Manager struct {
	store *store.Store
	now   func() time.Time

	active        *store.FocusSession
	completeFired bool

	// OnComplete, when set, fires once when a session first reaches
	// zero. The session stays alive until explicitly ended.
	OnComplete func(store.FocusSession)
}

func NewManager(s *store.Store) *Manager {
	return NewManagerWithClock(s, time.Now)
}

func NewManagerWithClock(s *store.Store, now func() time.Time) *Manager {
	return &Manager{store: s, now: now}
}

// Load restores the persisted session snapshot, if any.
func (m *Manager) Load() error {
	sess, err := m.store.LoadSession()
	if err != nil {
		return err
	}
	m.active = sess
	m.completeFired = sess != nil && Remaining(sess, m.now()) <= 0
	return nil
}

// Active returns the current session or nil.
func (m *Manager) Active() *store.FocusSession {
	return m.active
}

// Start begins a new session, replacing any existing one. Only one
// session is ever active system-wide.
func (m *Manager) Start(p StartParams) error {
	if p.DurationSeconds <= 0 {
		return ErrNoDuration
	}
	sess := &store.FocusSession{
		CardID:       p.CardID,
		CardTitle:    p.CardTitle,
		BoardName:    p.BoardName,
		PageID:       p.PageID,
		TimeBlockID:  p.TimeBlockID,
		TotalSeconds: p.DurationSeconds,
		StartedAtMS:  m.now().UnixMilli(),
		IsRunning:    true,
	}
	if err := m.store.SaveSession(sess); err != nil {
		return err
	}
	m.active = sess
	m.completeFired = false
	return nil
}

// Pause folds the running interval into ElapsedBeforePause so the
// countdown freezes losslessly. No-op unless running.
func (m *Manager) Pause() error {
	s := m.active
	if s == nil || !s.IsRunning {
		return nil
	}
	folded := s.ElapsedBeforePause + int((m.now().UnixMilli()-s.StartedAtMS)/1000)
	if folded > s.TotalSeconds {
		folded = s.TotalSeconds
	}
	s.ElapsedBeforePause = folded
	s.StartedAtMS = 0
	s.IsRunning = false
	return m.store.SaveSession(s)
}

// Resume restarts the countdown from where Pause left it.
func (m *Manager) Resume() error {
	s := m.active
	if s == nil || s.IsRunning {
		return nil
	}
	s.StartedAtMS = m.now().UnixMilli()
	s.IsRunning = true
	return m.store.SaveSession(s)
}

// Extend adds delta seconds to the target duration, floored at what
// has already elapsed so remaining never goes negative. Extending a
// paused session resumes it: asking for more time means keep going.
func (m *Manager) Extend(deltaSeconds int) error {
	s := m.active
	if s == nil {
		return nil
	}
	now := m.now()
	cur := int(math.Ceil(elapsed(s, now)))
	total := s.TotalSeconds + deltaSeconds
	if total < cur {
		total = cur
	}
	s.TotalSeconds = total
	if !s.IsRunning {
		s.StartedAtMS = now.UnixMilli()
		s.IsRunning = true
	}
	if Remaining(s, now) > 0 {
		m.completeFired = false
	}
	return m.store.SaveSession(s)
}

// End discards the session.
func (m *Manager) End() error {
	m.active = nil
	m.completeFired = false
	return m.store.ClearSession()
}

// RemainingNow is a convenience over Remaining for the active session.
func (m *Manager) RemainingNow() int {
	if m.active == nil {
		return 0
	}
	return Remaining(m.active, m.now())
}

// Tick performs the per-second completion check. It reports true
// exactly once per session when the countdown first reaches zero;
// completion is derived, the session is not auto-stopped.
func (m *Manager) Tick() bool {
	if m.active == nil || m.completeFired {
		return false
	}
	if Remaining(m.active, m.now()) > 0 {
		return false
	}
	m.completeFired = true
	if m.OnComplete != nil {
		m.OnComplete(*m.active)
	}
	return true
}

// Completed reports whether the active session has reached zero.
func (m *Manager) Completed() bool {
	return m.active != nil && Remaining(m.active, m.now()) <= 0
}
