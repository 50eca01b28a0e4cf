// Package content ships the built-in quiz catalog and reads catalog files.
package content

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"quiz-engine/internal/domain"
)

//go:embed catalog.json
var builtin []byte

// Catalog is a set of categories and the quizzes filed under them.
type Catalog struct {
	Categories []domain.Category `json:"categories"`
	Quizzes    []domain.Quiz     `json:"quizzes"`
}

// QuizMap indexes the quizzes by ID.
func (c Catalog) QuizMap() map[string]domain.Quiz {
	out := make(map[string]domain.Quiz, len(c.Quizzes))
	for _, q := range c.Quizzes {
		out[q.ID] = q
	}
	return out
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(builtin, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode builtin catalog: %w", err)
	}
	return c, nil
}

// Decode reads a catalog document from r.
func Decode(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	return c, nil
}

// LoadFile reads a catalog from path, or the builtin catalog when path is empty.
func LoadFile(path string) (Catalog, error) {
	if path == "" {
		return Builtin()
	}
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, err
	}
	defer f.Close()
	return Decode(f)
}
