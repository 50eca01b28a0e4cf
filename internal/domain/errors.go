package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an attempt session has not been started.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question index or ID outside the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAlreadySubmitted is returned by any transition attempted after submit.
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	// ErrUnknownKind indicates a question or answer tag outside the closed set.
	ErrUnknownKind = errors.New("unknown question kind")
	// ErrResultNotFound indicates no stored result for the requested ID.
	ErrResultNotFound = errors.New("result not found")
	// ErrKindMismatch is returned when an answer is recorded against a question of another kind.
	ErrKindMismatch = errors.New("answer kind does not match question kind")
)
