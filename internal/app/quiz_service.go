package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quiz-engine/internal/capture"
	"quiz-engine/internal/domain"
)

// SessionRepository abstracts where live attempt sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultRepository persists submitted results.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.QuizResult) error
	GetResult(ctx context.Context, resultID string) (domain.QuizResult, error)
	ListResults(ctx context.Context, quizID string) ([]domain.QuizResult, error)
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithTickInterval sets how often session timers tick. Zero disables the
// timer driver; sessions then only move on explicit calls.
func WithTickInterval(d time.Duration) ServiceOption {
	return func(s *QuizService) { s.tick = d }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *QuizService) { s.log = l }
}

// WithSessionOptions appends options applied to every new session.
func WithSessionOptions(opts ...SessionOption) ServiceOption {
	return func(s *QuizService) { s.sessionOpts = append(s.sessionOpts, opts...) }
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions    SessionRepository
	quizzes     QuizRepository
	results     ResultRepository
	tick        time.Duration
	log         *slog.Logger
	sessionOpts []SessionOption
	saveTimeout time.Duration
}

func NewQuizService(store SessionRepository, quizzes QuizRepository, results ResultRepository, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:    store,
		quizzes:     quizzes,
		results:     results,
		tick:        time.Second,
		log:         slog.Default(),
		saveTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new attempt at quizID and starts its timers.
func (s *QuizService) Start(ctx context.Context, quizID string) (Snapshot, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return Snapshot{}, err
	}

	opts := append([]SessionOption{WithSubmitHook(s.persist)}, s.sessionOpts...)
	session := NewSession(uuid.NewString(), quiz, opts...)
	s.sessions.Put(session)

	if s.tick > 0 {
		// timers outlive the request that started them; Close or Submit stops them
		go session.RunTimers(context.WithoutCancel(ctx), s.tick)
	}
	s.log.InfoContext(ctx, "attempt started", "session_id", session.ID(), "quiz_id", quizID, "questions", len(quiz.Questions))
	return session.Snapshot(), nil
}

// Answer replaces the whole answer for question index.
func (s *QuizService) Answer(_ context.Context, sessionID string, index int, answer domain.Answer) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.RecordAnswer(index, answer)
}

// Capture applies one interaction event to question index.
func (s *QuizService) Capture(_ context.Context, sessionID string, index int, ev capture.Event) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Apply(index, ev)
}

func (s *QuizService) Next(_ context.Context, sessionID string) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Next()
}

func (s *QuizService) Prev(_ context.Context, sessionID string) (Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return session.Prev()
}

// Submit ends the attempt. The result is persisted by the session's submit hook.
func (s *QuizService) Submit(_ context.Context, sessionID string) (domain.QuizResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.QuizResult{}, domain.ErrSessionNotFound
	}
	return session.Submit()
}

// Subscribe returns a channel that receives snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Quiz returns the content of quizID through the quiz cache.
func (s *QuizService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

// SessionResult returns the result held by a live session once it is submitted.
func (s *QuizService) SessionResult(_ context.Context, sessionID string) (domain.QuizResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.QuizResult{}, domain.ErrSessionNotFound
	}
	result, ok := session.Result()
	if !ok {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	return result, nil
}

// Result looks up a stored result.
func (s *QuizService) Result(ctx context.Context, resultID string) (domain.QuizResult, error) {
	return s.results.GetResult(ctx, resultID)
}

// Results lists stored results for a quiz, newest first.
func (s *QuizService) Results(ctx context.Context, quizID string) ([]domain.QuizResult, error) {
	return s.results.ListResults(ctx, quizID)
}

// Close drops a session, stopping its timers. A session that was never
// submitted leaves no result behind.
func (s *QuizService) Close(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

func (s *QuizService) persist(result domain.QuizResult) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()
	if err := s.results.SaveResult(ctx, result); err != nil {
		s.log.Error("save result failed", "result_id", result.ID, "quiz_id", result.QuizID, "err", err)
		return
	}
	s.log.Info("attempt submitted", "result_id", result.ID, "quiz_id", result.QuizID, "score", result.Score, "max_score", result.MaxScore)
}
