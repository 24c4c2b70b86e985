package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfidenceLevel is a user-assigned mastery rating for a revision topic.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// IsValid reports whether the confidence level is one of the known values.
func (c ConfidenceLevel) IsValid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

// Topic is a revision unit owned by a subject.
type Topic struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	RevisionCount   int             `json:"revision_count"`
	LastRevised     *time.Time      `json:"last_revised,omitempty"`
	ConfidenceLevel ConfidenceLevel `json:"confidence_level"`
	Notes           string          `json:"notes,omitempty"` // sanitized before storage
}

// Subject groups topics and carries the latest score for the dashboard.
type Subject struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Score  float64 `json:"score"` // 0..100
	Color  string  `json:"color"`
	Topics []Topic `json:"topics"`
}

// TestSection is the per-subject breakdown of a mock test.
type TestSection struct {
	Name     string  `json:"name"`
	MaxMarks float64 `json:"max_marks"`
	Obtained float64 `json:"obtained"`
}

// MockTest records one attempted test.
type MockTest struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Date            time.Time     `json:"date"`
	DurationMinutes int           `json:"duration_minutes"`
	MaxMarks        float64       `json:"max_marks"`
	Obtained        float64       `json:"obtained"`
	Sections        []TestSection `json:"subjects"`
}

// Percentage returns the overall score as a percentage, 0 for a zero-mark test.
func (t *MockTest) Percentage() float64 {
	if t.MaxMarks <= 0 {
		return 0
	}
	return t.Obtained / t.MaxMarks * 100
}

// Validate enforces the marks invariant: obtained never exceeds maximum,
// per section and overall, and nothing is negative.
func (t *MockTest) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("test name is required")
	}
	if t.MaxMarks <= 0 {
		return errors.New("max marks must be positive")
	}
	if t.Obtained < 0 || t.Obtained > t.MaxMarks {
		return fmt.Errorf("obtained marks must be between 0 and %g", t.MaxMarks)
	}
	for _, section := range t.Sections {
		if section.MaxMarks < 0 || section.Obtained < 0 || section.Obtained > section.MaxMarks {
			return fmt.Errorf("invalid marks for section %q", section.Name)
		}
	}
	return nil
}

// StudyDay marks one calendar day as studied at a given intensity.
// 1 = light, 2 = medium, 3 = intense. Absence of a record means "not studied";
// intensity zero is never stored.
type StudyDay struct {
	Date      time.Time `json:"date"`
	Intensity int       `json:"intensity"`
}

// UserData is the per-user document: everything one user tracks, serialized
// as a single JSON blob under their data key.
type UserData struct {
	Subjects  []Subject  `json:"subjects"`
	MockTests []MockTest `json:"mock_tests"`
	StudyDays []StudyDay `json:"study_days"`
}

// DefaultSubjects are seeded into a fresh user data document on first login.
func DefaultSubjects() []Subject {
	return []Subject{
		{Name: "Physics", Color: "#6366f1", Topics: []Topic{}},
		{Name: "Chemistry", Color: "#8b5cf6", Topics: []Topic{}},
		{Name: "Mathematics", Color: "#0ea5e9", Topics: []Topic{}},
	}
}
