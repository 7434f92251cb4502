package repository

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"neetprep/backend/models"
)

//go:embed seed/questions.json
var seedQuestions []byte

// SeedQuestions decodes the embedded question bank used by the memory
// backend and by the postgres bootstrap when the questions table is empty.
func SeedQuestions() ([]models.Question, error) {
	var questions []models.Question
	if err := json.Unmarshal(seedQuestions, &questions); err != nil {
		return nil, fmt.Errorf("decode seed questions: %w", err)
	}
	for i := range questions {
		questions[i].Normalize()
		if err := questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed question %d: %w", questions[i].ID, err)
		}
	}
	return questions, nil
}
