package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/capture"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
)

// Phase is the coarse state of an attempt.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseSubmitted  Phase = "submitted"
)

// Snapshot is what subscribers see after every transition.
type Snapshot struct {
	SessionID        string          `json:"sessionId"`
	QuizID           string          `json:"quizId"`
	Phase            Phase           `json:"phase"`
	CurrentIndex     int             `json:"currentIndex"`
	TotalQuestions   int             `json:"totalQuestions"`
	QuizTimeLeft     int             `json:"quizTimeLeft"`
	QuestionTimeLeft int             `json:"questionTimeLeft"`
	Answered         int             `json:"answered"`
	AllAnswered      bool            `json:"allAnswered"`
	CurrentAnswer    json.RawMessage `json:"currentAnswer,omitempty"`
	PendingLeft      *int            `json:"pendingLeft,omitempty"`
	ResultID         string          `json:"resultId,omitempty"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock replaces time.Now, for deterministic timestamps in tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithResultIDs replaces the result ID generator.
func WithResultIDs(next func() string) SessionOption {
	return func(s *Session) { s.newID = next }
}

// WithSubmitHook registers fn to receive the result once, after submission.
// fn runs outside the session lock.
func WithSubmitHook(fn func(domain.QuizResult)) SessionOption {
	return func(s *Session) { s.onSubmit = fn }
}

// WithTimeDefaults overrides the countdown budgets used when the quiz or a
// question leaves its own limit unset. Non-positive values keep the built-in
// defaults.
func WithTimeDefaults(quizSeconds, questionSeconds int) SessionOption {
	return func(s *Session) {
		if quizSeconds > 0 {
			s.quizDefault = quizSeconds
		}
		if questionSeconds > 0 {
			s.questionDefault = questionSeconds
		}
	}
}

// Session is one attempt at one quiz: InProgress(currentIndex) until it is
// submitted, then Submitted for good. All transitions are serialized.
type Session struct {
	id        string
	quiz      domain.Quiz
	now       func() time.Time
	newID     func() string
	onSubmit  func(domain.QuizResult)
	startedAt time.Time

	quizDefault     int
	questionDefault int

	mu            sync.Mutex
	phase         Phase
	index         int
	answers       []domain.Answer
	pending       []*int
	quizClock     Countdown
	questionClock Countdown
	result        *domain.QuizResult
	stopTimers    context.CancelFunc
	closed        bool
	subscribers   map[chan Snapshot]struct{}
}

// NewSession starts an attempt at the first question with both countdowns full.
func NewSession(id string, quiz domain.Quiz, opts ...SessionOption) *Session {
	s := &Session{
		id:              id,
		quiz:            quiz,
		now:             time.Now,
		newID:           uuid.NewString,
		phase:           PhaseInProgress,
		quizDefault:     domain.DefaultQuizDuration,
		questionDefault: domain.DefaultQuestionTime,
		answers:         make([]domain.Answer, len(quiz.Questions)),
		pending:         make([]*int, len(quiz.Questions)),
		subscribers:     make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startedAt = s.now()
	s.quizClock = NewCountdown(s.quizDuration())
	if len(quiz.Questions) > 0 {
		s.questionClock = NewCountdown(s.questionTime(0))
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) QuizID() string { return s.quiz.ID }

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result returns the attempt result once submitted.
func (s *Session) Result() (domain.QuizResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.QuizResult{}, false
	}
	return *s.result, true
}

// Next moves forward one question, clamped to the last one.
func (s *Session) Next() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return s.snapshotLocked(), domain.ErrAlreadySubmitted
	}
	s.moveLocked(s.index + 1)
	return s.broadcastLocked(), nil
}

// Prev moves back one question, clamped to the first one.
func (s *Session) Prev() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return s.snapshotLocked(), domain.ErrAlreadySubmitted
	}
	s.moveLocked(s.index - 1)
	return s.broadcastLocked(), nil
}

// RecordAnswer overwrites the answer slot for question index. A nil answer
// marks the question unanswered again.
func (s *Session) RecordAnswer(index int, answer domain.Answer) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return s.snapshotLocked(), domain.ErrAlreadySubmitted
	}
	if index < 0 || index >= len(s.quiz.Questions) {
		return s.snapshotLocked(), domain.ErrQuestionNotFound
	}
	if answer != nil && answer.Kind() != s.quiz.Questions[index].Kind() {
		return s.snapshotLocked(), domain.ErrKindMismatch
	}
	s.answers[index] = answer
	s.pending[index] = nil
	return s.broadcastLocked(), nil
}

// Apply feeds one interaction event through the capture reducer of question
// index and records the resulting answer.
func (s *Session) Apply(index int, ev capture.Event) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseInProgress {
		return s.snapshotLocked(), domain.ErrAlreadySubmitted
	}
	if index < 0 || index >= len(s.quiz.Questions) {
		return s.snapshotLocked(), domain.ErrQuestionNotFound
	}
	kind := s.quiz.Questions[index].Kind()
	if !capture.Accepts(kind, ev) {
		return s.snapshotLocked(), domain.ErrKindMismatch
	}
	next := capture.Reduce(kind, capture.State{Answer: s.answers[index], Pending: s.pending[index]}, ev)
	s.answers[index] = next.Answer
	s.pending[index] = next.Pending
	return s.broadcastLocked(), nil
}

// Submit ends the attempt and returns its result. Only the first call
// succeeds; later calls return ErrAlreadySubmitted and no result.
func (s *Session) Submit() (domain.QuizResult, error) {
	s.mu.Lock()
	result, err := s.submitLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.QuizResult{}, err
	}
	s.afterSubmit(result)
	return result, nil
}

// Tick advances both countdowns by one second. Overall expiry submits;
// question expiry moves to the next question, or submits on the last one.
// It returns the result when this tick submitted the attempt.
func (s *Session) Tick() (Snapshot, *domain.QuizResult) {
	s.mu.Lock()
	if s.phase != PhaseInProgress {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	quizExpired := s.quizClock.Tick()
	questionExpired := s.questionClock.Tick()

	var submitted *domain.QuizResult
	switch {
	case quizExpired:
		if r, err := s.submitLocked(); err == nil {
			submitted = &r
		}
	case questionExpired && s.index >= len(s.quiz.Questions)-1:
		if r, err := s.submitLocked(); err == nil {
			submitted = &r
		}
	case questionExpired:
		s.moveLocked(s.index + 1)
		s.broadcastLocked()
	default:
		s.broadcastLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if submitted != nil {
		s.afterSubmit(*submitted)
	}
	return snap, submitted
}

// RunTimers ticks the session every interval until ctx ends or the attempt
// leaves InProgress. Only one driver runs per session.
func (s *Session) RunTimers(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.phase != PhaseInProgress || s.closed || s.stopTimers != nil {
		s.mu.Unlock()
		return
	}
	s.stopTimers = cancel
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Close stops the timers and disconnects subscribers without submitting.
// Later subscribers get an already closed channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.stopTimers != nil {
		s.stopTimers()
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Subscribe returns a channel of snapshots, primed with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()

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

func (s *Session) submitLocked() (domain.QuizResult, error) {
	if s.phase != PhaseInProgress {
		return domain.QuizResult{}, domain.ErrAlreadySubmitted
	}
	s.phase = PhaseSubmitted
	if s.stopTimers != nil {
		s.stopTimers()
	}
	now := s.now()
	result := grading.NewResult(s.newID(), s.quiz, s.answers, now.Sub(s.startedAt), now)
	s.result = &result
	return result, nil
}

// afterSubmit hands the result to the submit hook, then tells subscribers.
// Subscribers therefore never see the submitted phase before the hook has
// stored the result.
func (s *Session) afterSubmit(result domain.QuizResult) {
	if s.onSubmit != nil {
		s.onSubmit(result)
	}
	s.mu.Lock()
	s.broadcastLocked()
	s.mu.Unlock()
}

func (s *Session) moveLocked(target int) {
	last := len(s.quiz.Questions) - 1
	if target > last {
		target = last
	}
	if target < 0 {
		target = 0
	}
	// a clamped move keeps the running question budget
	if last < 0 || target == s.index {
		return
	}
	s.index = target
	s.questionClock.Reset(s.questionTime(target))
}

func (s *Session) quizDuration() int {
	return s.quiz.EffectiveDuration(s.quizDefault)
}

func (s *Session) questionTime(i int) int {
	return s.quiz.Questions[i].EffectiveTimeLimit(s.questionDefault)
}

func (s *Session) broadcastLocked() Snapshot {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the stale update so a slow reader never blocks a transition
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (s *Session) snapshotLocked() Snapshot {
	answered := 0
	for _, a := range s.answers {
		if a != nil {
			answered++
		}
	}
	snap := Snapshot{
		SessionID:        s.id,
		QuizID:           s.quiz.ID,
		Phase:            s.phase,
		CurrentIndex:     s.index,
		TotalQuestions:   len(s.quiz.Questions),
		QuizTimeLeft:     s.quizClock.Remaining(),
		QuestionTimeLeft: s.questionClock.Remaining(),
		Answered:         answered,
		AllAnswered:      grading.AllAnswered(s.quiz.Questions, s.answers),
		UpdatedAt:        s.now(),
	}
	if s.index < len(s.answers) {
		if a := s.answers[s.index]; a != nil {
			if raw, err := domain.MarshalAnswer(a); err == nil {
				snap.CurrentAnswer = raw
			}
		}
		if p := s.pending[s.index]; p != nil {
			left := *p
			snap.PendingLeft = &left
		}
	}
	if s.result != nil {
		snap.ResultID = s.result.ID
	}
	return snap
}
