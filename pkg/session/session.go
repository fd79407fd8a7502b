// Package session owns one engine session: module acquisition, engine creation and
// teardown, the input operations and the cached suggestion set.
//
// A Session is not safe for concurrent use; callers serialize access.
package session

import (
	"errors"
	"fmt"

	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/charmbracelet/log"
)

var (
	// ErrNotCreated is returned by operations on a session without an engine.
	ErrNotCreated = errors.New("session: not created")
	// ErrAlreadyCreated is returned by Create on a live session.
	ErrAlreadyCreated = errors.New("session: already created")
	// ErrStaleSuggestion is returned when a suggestion index is not in the current set.
	ErrStaleSuggestion = errors.New("session: suggestion index not in current set")
)

// SuggestionSet is the last fetched suggestions. It is replaced wholesale on each
// fetch and emptied by every input mutation.
type SuggestionSet struct {
	Tag         engine.SuggestionSetID
	Suggestions []engine.Suggestion
}

// Len is the number of suggestions in the set.
func (s SuggestionSet) Len() int { return len(s.Suggestions) }

// Texts returns the suggestion strings in engine order.
func (s SuggestionSet) Texts() []string {
	out := make([]string, len(s.Suggestions))
	for i, sg := range s.Suggestions {
		out[i] = sg.Text
	}
	return out
}

// Session is the engine lifetime between Create and Destroy.
type Session struct {
	loader  engine.Loader
	module  engine.Module
	eng     engine.Engine
	created bool
	cache   engine.SuggestionReply
	logger  *log.Logger
}

// New returns a session that acquires its engine from loader on Create.
func New(loader engine.Loader, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{loader: loader, logger: logger}
}

// IsCreated reports whether the engine is live.
func (s *Session) IsCreated() bool { return s.created }

// Create acquires the module, binds its capabilities and creates the engine with
// locking enabled and the given base path. On any failure after the module was
// acquired, the module is closed before returning.
func (s *Session) Create(basePath string) error {
	if s.created {
		return ErrAlreadyCreated
	}

	s.logger.Debug("Creating engine", "base", basePath)
	module, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load engine module: %w", err)
	}

	eng, err := engine.Bind(module)
	if err != nil {
		s.closeModule(module)
		return fmt.Errorf("failed to bind engine: %w", err)
	}

	cfg := engine.Config{LockingEnabled: true, BasePath: basePath}
	if r := eng.Create(cfg); r.Failed() {
		s.closeModule(module)
		return fmt.Errorf("failed to create engine: %s", r)
	}

	s.module = module
	s.eng = eng
	s.created = true
	s.logger.Debug("Created engine")
	return nil
}

// Destroy tears the engine down and releases the module. It is a no-op when the
// session is not created. The session reads as not created before any teardown
// step runs.
func (s *Session) Destroy() {
	if !s.created {
		return
	}
	s.created = false

	eng, module := s.eng, s.module
	if s.cache.Held() {
		if r := eng.ReleaseAllocation(&s.cache); r.Failed() {
			s.logger.Warnf("Failed to release suggestions: %s", r)
		}
	}
	s.cache = engine.SuggestionReply{}

	eng.Destroy()
	s.eng = nil
	s.module = nil
	s.closeModule(module)
	s.logger.Debug("Destroyed engine")
}

func (s *Session) closeModule(m engine.Module) {
	if err := m.Close(); err != nil {
		s.logger.Warnf("Failed to release engine module: %v", err)
	}
}

// RunCommand forwards to the engine, failing with ResultNotCreated without one.
func (s *Session) RunCommand(cmd engine.Command, arg1, arg2 any) engine.Result {
	if !s.created {
		return engine.ResultNotCreated
	}
	return s.eng.RunCommand(cmd, arg1, arg2)
}

// ReleaseAllocation forwards to the engine.
func (s *Session) ReleaseAllocation(alloc engine.Allocation) engine.Result {
	if !s.created {
		return engine.ResultNotCreated
	}
	return s.eng.ReleaseAllocation(alloc)
}

// run issues cmd and converts the result.
func (s *Session) run(cmd engine.Command, arg1, arg2 any) error {
	if !s.created {
		return ErrNotCreated
	}
	return engine.Check(cmd, s.eng.RunCommand(cmd, arg1, arg2))
}

// release hands alloc back if the engine filled it.
func (s *Session) release(alloc engine.Allocation) {
	if !alloc.Allocation().Held() {
		return
	}
	if r := s.eng.ReleaseAllocation(alloc); r.Failed() {
		s.logger.Warnf("Failed to release allocation: %s", r)
	}
}

// dropSuggestions releases and forgets the cached set.
func (s *Session) dropSuggestions() {
	if s.created {
		s.release(&s.cache)
	}
	s.cache = engine.SuggestionReply{}
}
