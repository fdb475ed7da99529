package session

import (
	"errors"
	"sync"
	"time"

	"asset-reconciler/core/logger"
	"asset-reconciler/core/staging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session owns the transient resources of one comparison run.
type Session struct {
	ID      string
	Logger  *zap.Logger
	Started time.Time

	// Store is set when rows are staged in a database.
	Store *staging.Store

	mu      sync.Mutex
	closers []func() error
	closed  bool
}

// New starts a session with a fresh run id. A nil logger is replaced by a no-op one.
func New(l *zap.Logger) *Session {
	if l == nil {
		l = zap.NewNop()
	}
	id := uuid.New().String()
	return &Session{
		ID:      id,
		Logger:  logger.WithRun(l, id),
		Started: time.Now(),
	}
}

// AttachStore stages rows of this run in db. The rows are removed on Close.
func (s *Session) AttachStore(db *gorm.DB) error {
	store, err := staging.New(db, s.ID)
	if err != nil {
		return err
	}
	s.Store = store
	s.OnClose(store.Close)
	return nil
}

// OnClose registers a cleanup function. Functions run in reverse registration order.
func (s *Session) OnClose(fn func() error) {
	s.mu.Lock()
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.Started)
}

// Close releases every resource. Calling it more than once is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.Logger.Debug("Session closed", zap.Duration("elapsed", s.Elapsed()))
	return errors.Join(errs...)
}
