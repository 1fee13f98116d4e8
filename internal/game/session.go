package game

import (
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"arquiz-service/internal/domain"
	"github.com/google/uuid"
)

const countdownStep = time.Second

// Session is the state of one playthrough. The host drives it with Tick and feeds it
// input through SelectAlternative and IdentifyTarget; subscribers see every change.
type Session struct {
	id       string
	playerID string
	rules    Rules
	content  domain.Content
	rnd      *rand.Rand
	now      func() time.Time

	mu                sync.Mutex
	sched             *scheduler
	dispatch          dispatcher
	score             int
	elapsedTotal      time.Duration
	currentIndex      int
	totalQuestions    int
	perQuestionPoints []int
	status            domain.Status
	remaining         time.Duration
	targetIdentified  bool
	answerLocked      bool
	active            bool
	closed            bool
	initials          string
	opponents         []domain.LeaderboardEntry
	subscribers       map[chan domain.Event]struct{}
}

// Option customises a Session at construction.
type Option func(*Session)

// WithRand fixes the random source, for deterministic tests.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) { s.rnd = rnd }
}

// WithClock overrides wall-clock timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithID sets the game id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// NewSession validates content against the rules and returns a reset, not yet started session.
func NewSession(playerID string, content domain.Content, rules Rules, opts ...Option) (*Session, error) {
	if err := content.Validate(rules.SectionSize); err != nil {
		return nil, err
	}
	s := &Session{
		id:          uuid.NewString(),
		playerID:    playerID,
		rules:       rules,
		content:     content,
		now:         time.Now,
		sched:       newScheduler(),
		subscribers: make(map[chan domain.Event]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.resetLocked()
	return s, nil
}

func (s *Session) ID() string       { return s.id }
func (s *Session) PlayerID() string { return s.playerID }

// Start resets the session, reshuffles every section and shows the first question.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.resetLocked()
	s.advanceLocked()
}

// Tick advances the session clock by dt, firing the countdown and any delayed advance.
func (s *Session) Tick(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.active || s.status != domain.StatusPlaying {
		return
	}
	s.sched.advance(dt)
}

// Activate resumes a paused session.
func (s *Session) Activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = !s.closed
}

// Deactivate pauses the clock; pending tasks keep their remaining time.
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Advance leaves the current question immediately, superseding any delayed advance.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.cancel(advanceTask)
	s.advanceLocked()
}

// SelectAlternative answers the current multiple-choice question. It reports whether the
// answer was taken; a second answer, a wrong question kind or an expired timer is ignored.
func (s *Session) SelectAlternative(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingInputLocked() || s.answerLocked || s.dispatch.kindAt(s.currentIndex) != domain.KindMultipleChoice {
		return false
	}
	q, ok := s.dispatch.multipleChoiceAt(s.currentIndex)
	if !ok {
		log.Printf("game %s: no multiple-choice question at position %d", s.id, s.currentIndex)
		return false
	}

	s.answerLocked = true
	s.sched.cancel(countdownTask)

	correct := q.CorrectIndex
	if index == correct {
		s.score += s.rules.Points
		s.broadcastLocked(domain.EventCorrectAnswer, &correct)
	} else {
		s.broadcastLocked(domain.EventWrongAnswer, &correct)
	}
	s.sched.after(advanceTask, s.rules.AnswerDelay, s.advanceLocked)
	return true
}

// IdentifyTarget records that the camera recognised the current image target.
func (s *Session) IdentifyTarget() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptingInputLocked() || s.targetIdentified || s.dispatch.kindAt(s.currentIndex) != domain.KindImageTarget {
		return false
	}
	_, slot, ok := s.dispatch.targetAt(s.currentIndex)
	if !ok || slot >= len(s.perQuestionPoints) {
		log.Printf("game %s: no image target at position %d", s.id, s.currentIndex)
		return false
	}

	s.targetIdentified = true
	s.sched.cancel(countdownTask)

	if earned := s.perQuestionPoints[slot]; earned < s.rules.TargetCap {
		award := min(s.rules.Points, s.rules.TargetCap-earned)
		s.perQuestionPoints[slot] += award
		s.score += award
	} else {
		log.Printf("game %s: target %d already at max points", s.id, slot)
	}
	s.broadcastLocked(domain.EventTargetFound, nil)
	s.sched.after(advanceTask, s.rules.TargetDelay, s.advanceLocked)
	return true
}

// SetInitials names the player on the leaderboard.
func (s *Session) SetInitials(initials string) error {
	initials = strings.ToUpper(strings.TrimSpace(initials))
	if n := len([]rune(initials)); n == 0 || n > 3 {
		return domain.ErrInvalidInitials
	}
	for _, r := range initials {
		if !unicode.IsLetter(r) {
			return domain.ErrInvalidInitials
		}
	}
	s.mu.Lock()
	s.initials = initials
	s.mu.Unlock()
	return nil
}

// Leaderboard ranks the player against synthetic opponents. Opponents are drawn once per game.
func (s *Session) Leaderboard() (domain.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusFinished {
		return domain.Leaderboard{}, domain.ErrGameInProgress
	}
	if s.opponents == nil {
		s.opponents = synthesizeOpponents(s.rnd, s.score, s.rules.Points)
	}
	name := s.initials
	if name == "" {
		name = defaultPlayerName
	}
	player := domain.LeaderboardEntry{
		Name:        name,
		Score:       s.score,
		TimeSeconds: int(s.elapsedTotal / time.Second),
	}
	return domain.Leaderboard{
		GameID:    s.id,
		Entries:   buildLeaderboard(player, s.opponents),
		CreatedAt: s.now(),
	}, nil
}

// SaveData returns the fields a SaveStore persists.
func (s *Session) SaveData() domain.SaveData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SaveData{Score: s.score, ElapsedTotal: s.elapsedTotal.Seconds()}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Status reports whether the game is still being played.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe returns a channel of events. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 32)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	// The buffer is empty, so this never blocks; sending under the lock keeps Close from racing it.
	ch <- domain.Event{Type: domain.EventState, Snapshot: s.snapshotLocked()}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close cancels every pending task and ends all subscriptions. A closed session never fires again.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.active = false
	s.sched.cancelAll()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) resetLocked() {
	s.sched.cancelAll()
	s.score = 0
	s.elapsedTotal = 0
	s.currentIndex = -1
	s.totalQuestions = s.content.TotalQuestions()
	s.perQuestionPoints = make([]int, len(s.content.Targets))
	s.status = domain.StatusPlaying
	s.remaining = s.rules.QuestionTime
	s.targetIdentified = false
	s.answerLocked = false
	s.active = true
	s.opponents = nil
	s.dispatch = dispatcher{
		content:     s.content,
		sectionSize: s.rules.SectionSize,
		orders:      sectionOrders(s.rnd, len(s.content.MultipleChoice), s.rules.SectionSize),
	}
}

func (s *Session) advanceLocked() {
	if s.closed || s.status != domain.StatusPlaying {
		return
	}
	if s.currentIndex >= 0 && s.currentIndex < s.totalQuestions {
		spent := s.rules.QuestionTime - s.remaining
		if spent > 0 && spent <= s.rules.QuestionTime {
			s.elapsedTotal += spent
		}
	}

	if s.currentIndex >= s.totalQuestions-1 {
		s.finishLocked()
		return
	}

	s.currentIndex++
	s.remaining = s.rules.QuestionTime
	s.targetIdentified = false
	s.answerLocked = false
	s.sched.every(countdownTask, countdownStep, s.countdownLocked)
	s.broadcastLocked(domain.EventQuestion, nil)
}

func (s *Session) finishLocked() {
	s.status = domain.StatusFinished
	s.sched.cancelAll()
	log.Printf("game %s: finished with score %d in %s", s.id, s.score, s.elapsedTotal)
	s.broadcastLocked(domain.EventFinished, nil)
}

func (s *Session) countdownLocked() {
	if s.status != domain.StatusPlaying || s.targetIdentified || s.answerLocked {
		s.sched.cancel(countdownTask)
		return
	}
	s.remaining -= countdownStep
	if s.remaining > 0 {
		s.broadcastLocked(domain.EventState, nil)
		return
	}

	s.remaining = 0
	s.answerLocked = true
	s.sched.cancel(countdownTask)
	s.broadcastLocked(domain.EventTimeout, nil)
	s.sched.after(advanceTask, s.rules.TimeoutDelay, s.advanceLocked)
}

func (s *Session) acceptingInputLocked() bool {
	return !s.closed && s.status == domain.StatusPlaying && s.currentIndex >= 0 && s.remaining > 0
}

func (s *Session) broadcastLocked(typ domain.EventType, correctIndex *int) {
	ev := domain.Event{Type: typ, Snapshot: s.snapshotLocked(), CorrectIndex: correctIndex}
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest queued event so a slow reader never blocks the game clock.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		GameID:           s.id,
		PlayerID:         s.playerID,
		Status:           s.status,
		Score:            s.score,
		ElapsedTotal:     s.elapsedTotal.Seconds(),
		CurrentIndex:     s.currentIndex,
		TotalQuestions:   s.totalQuestions,
		RemainingTime:    s.remaining.Seconds(),
		TargetIdentified: s.targetIdentified,
		AnswerLocked:     s.answerLocked,
	}
	if s.status == domain.StatusPlaying && s.currentIndex >= 0 {
		snap.Question = s.dispatch.view(s.currentIndex)
	}
	return snap
}
