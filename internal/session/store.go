// Package session holds the current authenticated identity. The store is the
// only writer; everything else reads Current or subscribes to change
// notifications.
package session

import (
	"context"
	"sync"

	"psyplanner/internal/backend"
	"psyplanner/internal/model"
)

type Store struct {
	provider backend.Identity

	mu      sync.RWMutex
	current *model.Session
	subs    map[int]func()
	nextSub int
}

func NewStore(provider backend.Identity) *Store {
	return &Store{provider: provider, subs: map[int]func(){}}
}

// Current returns the active session, or nil when signed out. The returned
// value is a copy; callers cannot mutate store state through it.
func (s *Store) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cur := *s.current
	return &cur
}

// Restore loads whatever session the identity provider has persisted. A
// provider with nothing to restore is not an error.
func (s *Store) Restore(ctx context.Context) error {
	sess, err := s.provider.Current(ctx)
	if err != nil {
		return err
	}
	s.replace(sess)
	return nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.replace(sess)
	return sess, nil
}

func (s *Store) SignUp(ctx context.Context, email, password, displayName string) (*model.Session, error) {
	sess, err := s.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}
	s.replace(sess)
	return sess, nil
}

func (s *Store) SignOut(ctx context.Context) error {
	if err := s.provider.SignOut(ctx); err != nil {
		return err
	}
	s.replace(nil)
	return nil
}

// Subscribe registers fn to run after every session change. The returned
// cancel func removes the subscription; subscribers hold no reference into
// the store beyond it.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) replace(sess *model.Session) {
	s.mu.Lock()
	s.current = sess
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// Notify outside the lock so a subscriber may re-read Current or cancel
	// itself without deadlocking.
	for _, fn := range fns {
		fn()
	}
}
