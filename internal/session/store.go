package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Repository долговременное хранилище состояний сессий.
type Repository interface {
	// LoadState возвращает состояние сессии; found == false для новой сессии.
	LoadState(ctx context.Context, sessionID string) (state State, found bool, err error)
	// SaveState сохраняет состояние сессии.
	SaveState(ctx context.Context, sessionID string, state State) error
}

// Listener вызывается после каждого изменения состояния.
type Listener func(sessionID string, prev, next State, actions []string)

// Store применяет действия к состояниям сессий.
//
// Действия одной сессии применяются по очереди, разные сессии друг друга не ждут.
// Блокировка действует в пределах процесса.
type Store struct {
	repo      Repository
	log       *slog.Logger
	mu        sync.Mutex
	locks     map[string]*sessionLock
	listeners []Listener
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewStore создаёт Store поверх репозитория.
func NewStore(repo Repository, log *slog.Logger) *Store {
	return &Store{repo: repo, log: log, locks: map[string]*sessionLock{}}
}

// Subscribe добавляет подписчика на изменения.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// lock захватывает блокировку сессии и возвращает функцию её освобождения.
func (s *Store) lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

// State возвращает текущее состояние сессии.
func (s *Store) State(ctx context.Context, sessionID string) (State, error) {
	const op = "session.State"
	state, _, err := s.repo.LoadState(ctx, sessionID)
	if err != nil {
		return State{}, fmt.Errorf("%s: %w", op, err)
	}
	return state, nil
}

// Dispatch последовательно применяет действия и возвращает новое состояние.
// Если состояние не изменилось, оно не сохраняется и подписчики не вызываются.
// Подписчики вызываются после снятия блокировки сессии.
func (s *Store) Dispatch(ctx context.Context, sessionID string, actions ...Action) (State, error) {
	const op = "session.Dispatch"

	prev, next, names, changed, err := s.apply(ctx, sessionID, actions)
	if err != nil {
		return prev, fmt.Errorf("%s: %w", op, err)
	}
	if !changed {
		return next, nil
	}

	s.log.Debug("session state changed",
		slog.String("session_id", sessionID),
		slog.Any("actions", names),
	)
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, l := range listeners {
		l(sessionID, prev, next, names)
	}
	return next, nil
}

func (s *Store) apply(ctx context.Context, sessionID string, actions []Action) (prev, next State, names []string, changed bool, err error) {
	unlock := s.lock(sessionID)
	defer unlock()

	prev, _, err = s.repo.LoadState(ctx, sessionID)
	if err != nil {
		return State{}, State{}, nil, false, err
	}

	next = prev.Clone()
	names = make([]string, 0, len(actions))
	for _, a := range actions {
		a.apply(&next)
		names = append(names, a.Name)
	}

	if Equal(prev, next) {
		return prev, next, names, false, nil
	}
	if err := s.repo.SaveState(ctx, sessionID, next); err != nil {
		return prev, prev, names, false, err
	}
	return prev, next, names, true, nil
}

// Equal сравнивает состояния; nil и пустой срез считаются равными.
func Equal(a, b State) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
