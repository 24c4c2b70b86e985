package stats

import (
	"sort"
	"time"

	"preppilot/models"
)

// SubjectScore is the latest score of one subject.
type SubjectScore struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Color string  `json:"color"`
}

// TestSummary aggregates mock test performance.
type TestSummary struct {
	Count      int       `json:"count"`
	AveragePct float64   `json:"average_pct"`
	BestPct    float64   `json:"best_pct"`
	LastDate   time.Time `json:"last_date,omitzero"`
}

// WeakTopic is a topic flagged for attention.
type WeakTopic struct {
	SubjectName string                 `json:"subject_name"`
	TopicID     string                 `json:"topic_id"`
	Name        string                 `json:"name"`
	Confidence  models.ConfidenceLevel `json:"confidence"`
	LastRevised *time.Time             `json:"last_revised,omitempty"`
}

// Overview is everything the dashboard needs in one response.
type Overview struct {
	Streak     int            `json:"streak"`
	Subjects   []SubjectScore `json:"subjects"`
	Tests      TestSummary    `json:"tests"`
	WeakTopics []WeakTopic    `json:"weak_topics"`
}

// BuildOverview assembles the dashboard metrics from a data document.
func BuildOverview(data *models.UserData, today time.Time) Overview {
	return Overview{
		Streak:     Streak(data.StudyDays, today),
		Subjects:   SubjectScores(data.Subjects),
		Tests:      SummarizeTests(data.MockTests),
		WeakTopics: WeakTopics(data.Subjects, today),
	}
}

// SubjectScores extracts the latest score per subject.
func SubjectScores(subjects []models.Subject) []SubjectScore {
	scores := make([]SubjectScore, 0, len(subjects))
	for _, subject := range subjects {
		scores = append(scores, SubjectScore{
			ID:    subject.ID,
			Name:  subject.Name,
			Score: subject.Score,
			Color: subject.Color,
		})
	}
	return scores
}

// SummarizeTests computes count, average, best, and most recent test date.
func SummarizeTests(tests []models.MockTest) TestSummary {
	summary := TestSummary{Count: len(tests)}
	if len(tests) == 0 {
		return summary
	}

	var total float64
	for i := range tests {
		pct := tests[i].Percentage()
		total += pct
		if pct > summary.BestPct {
			summary.BestPct = pct
		}
		if tests[i].Date.After(summary.LastDate) {
			summary.LastDate = tests[i].Date
		}
	}
	summary.AveragePct = total / float64(len(tests))
	return summary
}

// staleAfter is how long a topic may go unrevised before it is flagged.
const staleAfter = 14 * 24 * time.Hour

// WeakTopics returns topics with low confidence, never revised, or revised
// too long ago, weakest first.
func WeakTopics(subjects []models.Subject, today time.Time) []WeakTopic {
	var weak []WeakTopic
	for _, subject := range subjects {
		for _, topic := range subject.Topics {
			if !isWeak(topic, today) {
				continue
			}
			weak = append(weak, WeakTopic{
				SubjectName: subject.Name,
				TopicID:     topic.ID,
				Name:        topic.Name,
				Confidence:  topic.ConfidenceLevel,
				LastRevised: topic.LastRevised,
			})
		}
	}

	sort.SliceStable(weak, func(i, j int) bool {
		return confidenceRank(weak[i].Confidence) < confidenceRank(weak[j].Confidence)
	})
	return weak
}

func isWeak(topic models.Topic, today time.Time) bool {
	if topic.ConfidenceLevel == models.ConfidenceLow {
		return true
	}
	if topic.LastRevised == nil {
		return topic.ConfidenceLevel != models.ConfidenceHigh
	}
	return today.Sub(*topic.LastRevised) > staleAfter
}

func confidenceRank(level models.ConfidenceLevel) int {
	switch level {
	case models.ConfidenceLow:
		return 0
	case models.ConfidenceMedium:
		return 1
	case models.ConfidenceHigh:
		return 2
	}
	return 3
}
