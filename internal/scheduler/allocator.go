package scheduler

import (
	"math/rand"
	"sync"
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Result is the outcome of a generation run. A result with unscheduled
// classes is still a valid, conflict-free schedule.
type Result struct {
	Strategy    models.GenerationStrategy
	Sessions    []models.Session
	Unscheduled []models.Class
	Oracle      OracleOutcome
}

// Allocator is the first-fit fallback: classes in input order, rooms and
// slots in a random order, first feasible placement wins.
type Allocator struct {
	mu        sync.Mutex
	rng       *rand.Rand
	tolerance float64
}

// NewAllocator seeds the shuffle. A zero seed uses the current time.
func NewAllocator(seed int64, tolerance float64) *Allocator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Allocator{rng: rand.New(rand.NewSource(seed)), tolerance: tolerance}
}

// Allocate places every class it can and reports the rest as unscheduled.
func (a *Allocator) Allocate(p Problem) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	rooms, slots := a.shuffled(p)
	checker := NewChecker(p.Availability, a.tolerance)
	ledger := NewLedger()

	result := Result{
		Strategy: models.GenerationStrategyGreedy,
		Sessions: make([]models.Session, 0, len(p.Classes)),
	}
	for _, class := range p.Classes {
		session, ok := a.place(p, class, rooms, slots, checker, ledger)
		if !ok {
			result.Unscheduled = append(result.Unscheduled, class)
			continue
		}
		result.Sessions = append(result.Sessions, session)
	}
	return result, nil
}

// shuffled is the only place the shared rng is touched; runs for different
// scopes may allocate concurrently.
func (a *Allocator) shuffled(p Problem) ([]models.Room, []models.TimeSlot) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Shuffle(a.rng, p.Rooms), Shuffle(a.rng, p.Slots)
}

func (a *Allocator) place(p Problem, class models.Class, rooms []models.Room, slots []models.TimeSlot, checker *Checker, ledger *Ledger) (models.Session, bool) {
	for _, slot := range slots {
		if !checker.DurationMatches(class, slot) {
			continue
		}
		if !checker.SlotOpen(class, slot, ledger) {
			continue
		}
		for _, room := range rooms {
			if !checker.IsFeasible(class, room, slot, ledger) {
				continue
			}
			Commit(ledger, class, room.ID, slot.ID)
			return p.Session(class.ID, room.ID, slot.ID), true
		}
	}
	return models.Session{}, false
}
