package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"quiz-engine/internal/content"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
	"quiz-engine/internal/validate"
)

type gradeOutput struct {
	Result  domain.QuizResult `json:"result"`
	Summary grading.Summary   `json:"summary"`
}

// NewGradeCmd grades a list of answers against one quiz offline.
func NewGradeCmd() *cobra.Command {
	var (
		quizFile    string
		quizID      string
		answersFile string
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade an answers file against a quiz and print the result",
		Long: `Grade reads a JSON array with one entry per question (null for an
unanswered question) and prints the graded result with its summary.

The quiz comes from --quiz (a single quiz JSON document) or --quiz-id
(a quiz in the builtin catalog).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			quiz, err := loadGradeQuiz(quizFile, quizID)
			if err != nil {
				return err
			}
			answers, err := readAnswers(answersFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			out := gradeAnswers(quiz, answers, time.Now())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&quizFile, "quiz", "", "quiz JSON file")
	cmd.Flags().StringVar(&quizID, "quiz-id", "", "quiz ID from the builtin catalog")
	cmd.Flags().StringVar(&answersFile, "answers", "-", "answers JSON file, - for stdin")
	return cmd
}

func gradeAnswers(quiz domain.Quiz, answers []domain.Answer, now time.Time) gradeOutput {
	result := grading.NewResult(uuid.NewString(), quiz, answers, 0, now)
	return gradeOutput{Result: result, Summary: grading.Summarize(result)}
}

func loadGradeQuiz(file, id string) (domain.Quiz, error) {
	var quiz domain.Quiz
	switch {
	case file != "" && id != "":
		return quiz, errors.New("use either --quiz or --quiz-id")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return quiz, err
		}
		if err := json.Unmarshal(data, &quiz); err != nil {
			return quiz, fmt.Errorf("decode quiz: %w", err)
		}
	case id != "":
		catalog, err := content.Builtin()
		if err != nil {
			return quiz, err
		}
		q, ok := catalog.QuizMap()[id]
		if !ok {
			return quiz, fmt.Errorf("%w: %s", domain.ErrQuizNotFound, id)
		}
		quiz = q
	default:
		return quiz, errors.New("one of --quiz or --quiz-id is required")
	}
	if err := validate.New().Quiz(quiz); err != nil {
		return quiz, err
	}
	return quiz, nil
}

func readAnswers(file string, stdin io.Reader) ([]domain.Answer, error) {
	var data []byte
	var err error
	if file == "" || file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	answers := make([]domain.Answer, len(raw))
	for i, r := range raw {
		if string(r) == "null" {
			continue
		}
		a, err := domain.UnmarshalAnswer(r)
		if err != nil {
			return nil, fmt.Errorf("answer %d: %w", i+1, err)
		}
		answers[i] = a
	}
	return answers, nil
}
