package game

import "time"

type taskKey int

const (
	countdownTask taskKey = iota
	advanceTask
)

// task is a continuation due at deadline on the session clock. Periodic tasks re-arm themselves.
type task struct {
	deadline time.Duration
	period   time.Duration
	fn       func()
}

// scheduler runs at most one task per key against a clock advanced only by the host.
type scheduler struct {
	now   time.Duration
	tasks map[taskKey]*task
}

func newScheduler() *scheduler {
	return &scheduler{tasks: make(map[taskKey]*task)}
}

// after replaces any task under key with fn due in delay.
func (s *scheduler) after(key taskKey, delay time.Duration, fn func()) {
	s.tasks[key] = &task{deadline: s.now + delay, fn: fn}
}

// every replaces any task under key with fn repeating each period.
func (s *scheduler) every(key taskKey, period time.Duration, fn func()) {
	if period <= 0 {
		return
	}
	s.tasks[key] = &task{deadline: s.now + period, period: period, fn: fn}
}

func (s *scheduler) cancel(key taskKey) {
	delete(s.tasks, key)
}

func (s *scheduler) cancelAll() {
	for key := range s.tasks {
		delete(s.tasks, key)
	}
}

func (s *scheduler) pending(key taskKey) bool {
	_, ok := s.tasks[key]
	return ok
}

// advance moves the clock by dt and fires every task that falls due, in deadline order.
// A continuation observes the clock at its own deadline, so anything it schedules is
// measured from that instant.
func (s *scheduler) advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	target := s.now + dt
	for {
		key, due, ok := s.nextDue(target)
		if !ok {
			break
		}
		s.now = due.deadline
		if due.period > 0 {
			due.deadline += due.period
		} else {
			delete(s.tasks, key)
		}
		due.fn()
	}
	s.now = target
}

func (s *scheduler) nextDue(limit time.Duration) (taskKey, *task, bool) {
	var (
		bestKey taskKey
		best    *task
	)
	for key, t := range s.tasks {
		if t.deadline > limit {
			continue
		}
		if best == nil || t.deadline < best.deadline || (t.deadline == best.deadline && key < bestKey) {
			bestKey, best = key, t
		}
	}
	return bestKey, best, best != nil
}
