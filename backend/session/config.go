package session

import (
	"fmt"
	"strings"
	"time"

	"neetprep/backend/models"
)

const (
	DefaultMinQuestions = 10
	DefaultMaxQuestions = 50
	// DefaultDuration is the time allotment of one test, in seconds.
	DefaultDuration = 3600
)

// Configuration is assembled before a test starts and consumed once to
// fetch the question set.
type Configuration struct {
	Subject       models.Subject    `json:"subject"`
	QuestionCount int               `json:"questionCount"`
	Difficulty    models.Difficulty `json:"difficulty"`
	Chapter       string            `json:"chapter,omitempty"`
	StartTime     time.Time         `json:"startTime"`
}

// normalize canonicalizes the configuration and checks it against the
// question-count bounds. Failures are ConfigurationErrors.
func (c *Configuration) normalize(minQuestions, maxQuestions int) error {
	if strings.TrimSpace(string(c.Subject)) == "" {
		return newError(KindConfiguration, "please select a subject", nil)
	}
	subject, ok := models.ParseSubject(string(c.Subject))
	if !ok {
		return newError(KindConfiguration, fmt.Sprintf("unknown subject %q", c.Subject), nil)
	}
	c.Subject = subject

	difficulty, ok := models.ParseDifficulty(string(c.Difficulty))
	if !ok {
		return newError(KindConfiguration, fmt.Sprintf("unknown difficulty %q", c.Difficulty), nil)
	}
	c.Difficulty = difficulty

	if c.QuestionCount < minQuestions || c.QuestionCount > maxQuestions {
		return newError(KindConfiguration,
			fmt.Sprintf("question count must be between %d and %d", minQuestions, maxQuestions), nil)
	}
	c.Chapter = strings.TrimSpace(c.Chapter)
	return nil
}
