package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-engine/internal/capture"
	"quiz-engine/internal/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func threeQuestionQuiz() domain.Quiz {
	return domain.Quiz{
		ID:            "quiz-1",
		DurationLimit: 100,
		Questions: []domain.Question{
			{ID: "q1", TimeLimit: 3, Body: domain.MultipleChoice{Options: []string{"3", "4"}, CorrectOption: 1}},
			{ID: "q2", TimeLimit: 2, Points: 2, Body: domain.DragDrop{
				Items: []string{"a", "b"}, DropZones: []string{"x", "y"},
				CorrectPlacements: []domain.PlacementKey{{Item: 0, Zone: 1}},
			}},
			{ID: "q3", TimeLimit: 2, Body: domain.DropDown{Sentence: "___", DropDowns: []domain.SubDropDown{{ID: "d1", Options: []string{"no", "yes"}, CorrectOption: 1}}}},
		},
	}
}

func newTestSession(opts ...SessionOption) (*Session, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	ids := 0
	base := []SessionOption{
		WithClock(clock.Now),
		WithResultIDs(func() string {
			ids++
			return "result-" + string(rune('0'+ids))
		}),
	}
	return NewSession("s1", threeQuestionQuiz(), append(base, opts...)...), clock
}

func TestNavigationClamps(t *testing.T) {
	s, _ := newTestSession()

	snap, err := s.Prev()
	if err != nil || snap.CurrentIndex != 0 {
		t.Fatalf("expected prev to clamp at 0, got %d (%v)", snap.CurrentIndex, err)
	}
	s.Next()
	s.Next()
	snap, _ = s.Next()
	if snap.CurrentIndex != 2 {
		t.Fatalf("expected next to clamp at last index, got %d", snap.CurrentIndex)
	}
	if snap.QuestionTimeLeft != 2 {
		t.Fatalf("expected question timer reset to 2, got %d", snap.QuestionTimeLeft)
	}
}

func TestClampedNavigationKeepsQuestionBudget(t *testing.T) {
	s, _ := newTestSession()

	s.Tick()
	s.Tick()
	snap, _ := s.Prev()
	if snap.CurrentIndex != 0 || snap.QuestionTimeLeft != 1 {
		t.Fatalf("clamped prev must not refill the clock, got index=%d left=%d", snap.CurrentIndex, snap.QuestionTimeLeft)
	}
	snap, _ = s.Tick()
	if snap.CurrentIndex != 1 {
		t.Fatalf("expected q1 to expire after 3 ticks and advance, still at %d", snap.CurrentIndex)
	}

	s.Next()
	s.Tick()
	snap, _ = s.Next()
	if snap.CurrentIndex != 2 || snap.QuestionTimeLeft != 1 {
		t.Fatalf("clamped next must not refill the clock, got index=%d left=%d", snap.CurrentIndex, snap.QuestionTimeLeft)
	}
}

func TestRecordAnswerLastWriteWins(t *testing.T) {
	s, _ := newTestSession()

	if _, err := s.RecordAnswer(0, domain.MultipleChoiceAnswer{SelectedOption: 0}); err != nil {
		t.Fatalf("record: %v", err)
	}
	snap, err := s.RecordAnswer(0, domain.MultipleChoiceAnswer{SelectedOption: 1})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if snap.Answered != 1 || snap.AllAnswered {
		t.Fatalf("expected one answered question, got %+v", snap)
	}
	if _, err := s.RecordAnswer(5, domain.MultipleChoiceAnswer{}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
	if _, err := s.RecordAnswer(1, domain.MultipleChoiceAnswer{}); !errors.Is(err, domain.ErrKindMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}

	result, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || !result.Answers[0].IsCorrect {
		t.Fatalf("expected last answer to count, got %+v", result)
	}
}

func TestSubmitHappensOnce(t *testing.T) {
	var hookCalls int
	s, clock := newTestSession(WithSubmitHook(func(domain.QuizResult) { hookCalls++ }))

	s.RecordAnswer(0, domain.MultipleChoiceAnswer{SelectedOption: 1})
	clock.Advance(42*time.Second + 700*time.Millisecond)

	first, err := s.Submit()
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.TimeTaken != 42 || first.TotalQuestions != 3 || len(first.Answers) != 3 {
		t.Fatalf("unexpected result %+v", first)
	}
	if first.Score != 1 || first.MaxScore != 4 {
		t.Fatalf("expected score 1/4, got %d/%d", first.Score, first.MaxScore)
	}

	if _, err := s.Submit(); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected second submit rejected, got %v", err)
	}
	if _, err := s.Next(); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected navigation rejected after submit, got %v", err)
	}
	if _, err := s.RecordAnswer(1, nil); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected answers rejected after submit, got %v", err)
	}
	if _, submitted := s.Tick(); submitted != nil {
		t.Fatalf("tick after submit must not submit again")
	}
	if hookCalls != 1 {
		t.Fatalf("expected one submit hook call, got %d", hookCalls)
	}
	stored, ok := s.Result()
	if !ok || stored.ID != first.ID {
		t.Fatalf("expected stored result %s, got %+v", first.ID, stored)
	}
}

func TestQuestionTimerAutoAdvancesThenSubmits(t *testing.T) {
	s, _ := newTestSession()

	var snap Snapshot
	for i := 0; i < 3; i++ {
		snap, _ = s.Tick()
	}
	if snap.CurrentIndex != 1 || snap.QuestionTimeLeft != 2 {
		t.Fatalf("expected auto-advance to q2 with fresh timer, got %+v", snap)
	}
	if snap.QuizTimeLeft != 97 {
		t.Fatalf("expected overall timer 97, got %d", snap.QuizTimeLeft)
	}

	s.Tick()
	s.Tick()
	s.Tick()
	_, submitted := s.Tick()
	if submitted == nil {
		t.Fatalf("expected question expiry on the last question to submit")
	}
	if snap := s.Snapshot(); snap.Phase != PhaseSubmitted || snap.ResultID != submitted.ID {
		t.Fatalf("expected submitted snapshot, got %+v", snap)
	}
}

func TestOverallTimerSubmits(t *testing.T) {
	quiz := threeQuestionQuiz()
	quiz.DurationLimit = 2
	for i := range quiz.Questions {
		quiz.Questions[i].TimeLimit = 60
	}
	s := NewSession("s2", quiz)

	if _, submitted := s.Tick(); submitted != nil {
		t.Fatalf("submitted too early")
	}
	if _, submitted := s.Tick(); submitted == nil {
		t.Fatalf("expected overall expiry to submit")
	}
	if _, err := s.Submit(); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected manual submit after auto-submit rejected, got %v", err)
	}
}

func TestApplyCaptureKeepsOnePlacementPerItem(t *testing.T) {
	s, _ := newTestSession()

	s.Apply(1, capture.ItemDropped{Item: 0, Zone: 0})
	snap, err := s.Apply(1, capture.ItemDropped{Item: 0, Zone: 1})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if snap.Answered != 1 {
		t.Fatalf("expected answered drag question, got %+v", snap)
	}
	if _, err := s.Apply(1, capture.OptionSelected{Index: 1}); !errors.Is(err, domain.ErrKindMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}

	result, _ := s.Submit()
	placements := result.Answers[1].Answer.(domain.DragDropAnswer).Placements
	if len(placements) != 1 || placements[0] != (domain.Placement{ItemID: 0, ZoneID: 1}) {
		t.Fatalf("expected single placement in zone 1, got %+v", placements)
	}
	if result.Answers[1].Score != 2 {
		t.Fatalf("expected 2 points for drag question, got %d", result.Answers[1].Score)
	}
}

func TestRunTimersStopsOnSubmit(t *testing.T) {
	quiz := threeQuestionQuiz()
	quiz.DurationLimit = 1
	submitted := make(chan domain.QuizResult, 2)
	s := NewSession("s3", quiz, WithSubmitHook(func(r domain.QuizResult) { submitted <- r }))

	done := make(chan struct{})
	go func() {
		s.RunTimers(context.Background(), time.Millisecond)
		close(done)
	}()

	select {
	case <-submitted:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer never submitted")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer driver kept running after submit")
	}
	select {
	case <-submitted:
		t.Fatalf("submitted twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCloseStopsTimersAndSubscribers(t *testing.T) {
	s, _ := newTestSession()
	ch, cancel := s.Subscribe()
	defer cancel()
	<-ch // initial snapshot

	done := make(chan struct{})
	go func() {
		s.RunTimers(context.Background(), time.Hour)
		close(done)
	}()
	// wait until the driver registered itself
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		registered := s.stopTimers != nil
		s.mu.Unlock()
		if registered || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	s.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timer driver kept running after close")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected subscriber channel closed")
	}
	if snap := s.Snapshot(); snap.Phase != PhaseInProgress {
		t.Fatalf("close must not submit, got %s", snap.Phase)
	}
}

func TestCountdown(t *testing.T) {
	c := NewCountdown(2)
	if c.Tick() {
		t.Fatalf("expired early")
	}
	if !c.Tick() {
		t.Fatalf("expected expiry on second tick")
	}
	if c.Tick() {
		t.Fatalf("expired countdown must not expire again")
	}
	if NewCountdown(-3).Remaining() != 0 {
		t.Fatalf("negative budget should clamp to zero")
	}
}

func TestTimeDefaultsApplyOnlyToUnsetLimits(t *testing.T) {
	quiz := domain.Quiz{ID: "quiz-2", Questions: []domain.Question{
		{ID: "q1", Body: domain.MultipleChoice{Options: []string{"a", "b"}}},
		{ID: "q2", TimeLimit: 7, Body: domain.MultipleChoice{Options: []string{"a", "b"}}},
	}}

	s := NewSession("s2", quiz)
	snap := s.Snapshot()
	if snap.QuizTimeLeft != domain.DefaultQuizDuration || snap.QuestionTimeLeft != domain.DefaultQuestionTime {
		t.Fatalf("expected built-in defaults, got %+v", snap)
	}

	s = NewSession("s3", quiz, WithTimeDefaults(90, 15))
	snap = s.Snapshot()
	if snap.QuizTimeLeft != 90 || snap.QuestionTimeLeft != 15 {
		t.Fatalf("expected configured defaults, got %+v", snap)
	}
	snap, _ = s.Next()
	if snap.QuestionTimeLeft != 7 {
		t.Fatalf("explicit limit must win, got %d", snap.QuestionTimeLeft)
	}
}

func TestSubscribersSeeSubmitAfterHook(t *testing.T) {
	var stored bool
	s, _ := newTestSession(WithSubmitHook(func(domain.QuizResult) { stored = true }))
	ch, cancel := s.Subscribe()
	defer cancel()
	<-ch // initial snapshot

	if _, err := s.Submit(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	snap := <-ch
	if snap.Phase != PhaseSubmitted || !stored {
		t.Fatalf("expected submitted snapshot after hook, got %+v stored=%v", snap, stored)
	}
}

func TestSubscribeAfterCloseGetsClosedChannel(t *testing.T) {
	s, _ := newTestSession()
	s.Close()

	ch, cancel := s.Subscribe()
	defer cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after close")
	}
	s.mu.Lock()
	n := len(s.subscribers)
	s.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected no registered subscribers, got %d", n)
	}
}

func TestSubscribeRacingCloseDoesNotPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		s, _ := newTestSession()
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			ch, cancel := s.Subscribe()
			for range ch {
			}
			cancel()
		}()
		go func() {
			defer wg.Done()
			s.Close()
		}()
		wg.Wait()
	}
}
