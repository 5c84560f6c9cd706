// Package grading computes pass/fail outcomes for written tests and language
// interviews taken by vacancy applicants.
package grading

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/rm-hull/hr-portal-admin/internal/models"
)

// DefaultPassMark is the pass percentage used when a test does not set its own.
const DefaultPassMark = 60.0

var ErrUnknownLevel = errors.New("unknown language level")

type Outcome struct {
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// Percentage returns the share of correct answers, rounded to one decimal.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	correct = max(0, min(correct, total))
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

func Evaluate(result models.TestResult) Outcome {
	passMark := DefaultPassMark
	if result.PassMark != nil {
		passMark = *result.PassMark
	}

	percentage := Percentage(result.CorrectAnswers, result.TotalQuestions)
	return Outcome{
		Percentage: percentage,
		Passed:     result.TotalQuestions > 0 && percentage >= passMark,
	}
}

// Level is a CEFR language level, ordered from A1 to C2.
type Level int

const (
	LevelA1 Level = iota + 1
	LevelA2
	LevelB1
	LevelB2
	LevelC1
	LevelC2
)

var levelNames = map[string]Level{
	"A1": LevelA1,
	"A2": LevelA2,
	"B1": LevelB1,
	"B2": LevelB2,
	"C1": LevelC1,
	"C2": LevelC2,
}

var levelStrings = [...]string{"", "A1", "A2", "B1", "B2", "C1", "C2"}

func (l Level) String() string {
	if l < LevelA1 || l > LevelC2 {
		return "unknown"
	}
	return levelStrings[l]
}

func ParseLevel(s string) (Level, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if level, ok := levelNames[normalized]; ok {
		return level, nil
	}
	return 0, errors.Mark(errors.Newf("unknown language level %q", s), ErrUnknownLevel)
}

// MeetsLevel reports whether actual is at or above required.
func MeetsLevel(actual, required string) (bool, error) {
	actualLevel, err := ParseLevel(actual)
	if err != nil {
		return false, err
	}
	requiredLevel, err := ParseLevel(required)
	if err != nil {
		return false, err
	}
	return actualLevel >= requiredLevel, nil
}

type InterviewOutcome struct {
	Applicant string `json:"applicant"`
	Language  string `json:"language"`
	Level     string `json:"level"`
	Required  string `json:"required_level"`
	Passed    bool   `json:"passed"`
}

func EvaluateInterview(interview models.LanguageInterview) (*InterviewOutcome, error) {
	actual, err := ParseLevel(interview.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "interview of %s", interview.Applicant)
	}
	required, err := ParseLevel(interview.RequiredLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "interview of %s", interview.Applicant)
	}

	return &InterviewOutcome{
		Applicant: interview.Applicant,
		Language:  interview.Language,
		Level:     actual.String(),
		Required:  required.String(),
		Passed:    actual >= required,
	}, nil
}
