package service

import (
	"context"
	"sync"
)

// ScopeLocker grants exclusive ownership of an (academic year, term) scope
// without waiting. ok is false when another run holds the scope.
type ScopeLocker interface {
	TryAcquire(ctx context.Context, scope string) (release func(), ok bool, err error)
}

// ScopeKey is the lock key of an academic year and term.
func ScopeKey(academicYear, term string) string {
	return academicYear + "|" + term
}

type memoryScopeLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryScopeLocker serializes runs inside one process.
func NewMemoryScopeLocker() ScopeLocker {
	return &memoryScopeLocker{held: make(map[string]struct{})}
}

func (l *memoryScopeLocker) TryAcquire(_ context.Context, scope string) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[scope]; busy {
		return nil, false, nil
	}
	l.held[scope] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, scope)
			l.mu.Unlock()
		})
	}, true, nil
}

type compositeScopeLocker []ScopeLocker

// NewScopeLocker always locks in-process and, when distributed is non-nil,
// across replicas as well.
func NewScopeLocker(distributed ScopeLocker) ScopeLocker {
	lockers := compositeScopeLocker{NewMemoryScopeLocker()}
	if distributed != nil {
		lockers = append(lockers, distributed)
	}
	return lockers
}

func (c compositeScopeLocker) TryAcquire(ctx context.Context, scope string) (func(), bool, error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, locker := range c {
		release, ok, err := locker.TryAcquire(ctx, scope)
		if err != nil || !ok {
			releaseAll()
			return nil, false, err
		}
		releases = append(releases, release)
	}
	return releaseAll, true, nil
}
