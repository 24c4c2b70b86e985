package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"preppilot/models"
	"preppilot/utils"
)

// ErrNotOwned is returned when a referenced subject, topic, or test does not
// exist in the user's document.
var ErrNotOwned = errors.New("record not found")

const dataCacheTTL = 5 * time.Minute

// DataStore manages the per-user data documents: one JSON blob per user
// holding subjects, topics, mock tests, and study days. Decoded documents
// are cached briefly; every save refreshes the cache entry.
type DataStore struct {
	store Store
	cache *utils.MemoryCache
	mu    sync.Mutex
}

// NewDataStore creates a data store over the given key-value store.
func NewDataStore(store Store) *DataStore {
	return &DataStore{
		store: store,
		cache: utils.NewMemoryCache(),
	}
}

// Load reads a user's document. A missing or corrupted blob yields an empty
// document; corruption is logged, never surfaced.
func (s *DataStore) Load(email string) *models.UserData {
	if cached, ok := s.cache.Get(email); ok {
		if data, ok := cached.(*models.UserData); ok {
			return cloneUserData(data)
		}
	}

	data := s.loadFromStore(email)
	s.cache.Set(email, cloneUserData(data), dataCacheTTL)
	return data
}

func (s *DataStore) loadFromStore(email string) *models.UserData {
	raw, err := s.store.Get(DataKey(email))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			utils.Log.Warn("failed to read data for %s: %v", email, err)
		}
		return emptyUserData()
	}

	var data models.UserData
	if err := json.Unmarshal(raw, &data); err != nil {
		utils.Log.Warn("corrupted data document for %s, starting empty: %v", email, err)
		return emptyUserData()
	}
	normalizeUserData(&data)
	return &data
}

// Save persists a user's document and refreshes the cache.
func (s *DataStore) Save(email string, data *models.UserData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data document: %v", err)
	}
	if err := s.store.Set(DataKey(email), raw); err != nil {
		return err
	}
	s.cache.Set(email, cloneUserData(data), dataCacheTTL)
	return nil
}

// Seed initializes a user's document with the default subjects if none
// exists yet. Safe to call on every login.
func (s *DataStore) Seed(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.Get(DataKey(email)); err == nil {
		return nil
	}

	data := emptyUserData()
	for _, subject := range models.DefaultSubjects() {
		subject.ID = uuid.New().String()
		data.Subjects = append(data.Subjects, subject)
	}
	return s.Save(email, data)
}

// MarkStudyDay records that the user studied on the given day. Marking a day
// that is already marked overwrites the intensity (last write wins); there is
// at most one record per calendar date.
func (s *DataStore) MarkStudyDay(email string, date time.Time, intensity int) (*models.UserData, error) {
	if intensity < 1 || intensity > 3 {
		return nil, fmt.Errorf("intensity must be 1, 2, or 3")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	day := Midnight(date)

	replaced := false
	for i := range data.StudyDays {
		if Midnight(data.StudyDays[i].Date).Equal(day) {
			data.StudyDays[i].Intensity = intensity
			data.StudyDays[i].Date = day
			replaced = true
			break
		}
	}
	if !replaced {
		data.StudyDays = append(data.StudyDays, models.StudyDay{Date: day, Intensity: intensity})
	}

	if err := s.Save(email, data); err != nil {
		return nil, err
	}
	return data, nil
}

// AddSubject appends a subject with a fresh id.
func (s *DataStore) AddSubject(email string, subject models.Subject) (*models.Subject, error) {
	if strings.TrimSpace(subject.Name) == "" {
		return nil, fmt.Errorf("subject name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	subject.ID = uuid.New().String()
	if subject.Topics == nil {
		subject.Topics = []models.Topic{}
	}
	data.Subjects = append(data.Subjects, subject)

	if err := s.Save(email, data); err != nil {
		return nil, err
	}
	return &subject, nil
}

// UpdateSubject replaces the name, score, and color of an existing subject.
func (s *DataStore) UpdateSubject(email string, subject models.Subject) error {
	if subject.Score < 0 || subject.Score > 100 {
		return fmt.Errorf("score must be between 0 and 100")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	for i := range data.Subjects {
		if data.Subjects[i].ID != subject.ID {
			continue
		}
		if strings.TrimSpace(subject.Name) != "" {
			data.Subjects[i].Name = subject.Name
		}
		if subject.Color != "" {
			data.Subjects[i].Color = subject.Color
		}
		data.Subjects[i].Score = subject.Score
		return s.Save(email, data)
	}
	return ErrNotOwned
}

// DeleteSubject removes a subject and its topics.
func (s *DataStore) DeleteSubject(email, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	for i := range data.Subjects {
		if data.Subjects[i].ID == subjectID {
			data.Subjects = append(data.Subjects[:i], data.Subjects[i+1:]...)
			return s.Save(email, data)
		}
	}
	return ErrNotOwned
}

// AddTopic appends a topic to a subject. Notes are sanitized before storage.
func (s *DataStore) AddTopic(email, subjectID string, topic models.Topic) (*models.Topic, error) {
	if strings.TrimSpace(topic.Name) == "" {
		return nil, fmt.Errorf("topic name is required")
	}
	if topic.ConfidenceLevel == "" {
		topic.ConfidenceLevel = models.ConfidenceMedium
	}
	if !topic.ConfidenceLevel.IsValid() {
		return nil, fmt.Errorf("unknown confidence level %q", topic.ConfidenceLevel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	for i := range data.Subjects {
		if data.Subjects[i].ID != subjectID {
			continue
		}
		topic.ID = uuid.New().String()
		topic.Notes = utils.SanitizeNotes(topic.Notes)
		data.Subjects[i].Topics = append(data.Subjects[i].Topics, topic)
		if err := s.Save(email, data); err != nil {
			return nil, err
		}
		return &topic, nil
	}
	return nil, ErrNotOwned
}

// LogRevision records one revision pass over a topic: bumps the revision
// count, stamps the time, and applies the new confidence and notes.
func (s *DataStore) LogRevision(email, subjectID, topicID string, confidence models.ConfidenceLevel, notes string) (*models.Topic, error) {
	if !confidence.IsValid() {
		return nil, fmt.Errorf("unknown confidence level %q", confidence)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	for i := range data.Subjects {
		if data.Subjects[i].ID != subjectID {
			continue
		}
		for j := range data.Subjects[i].Topics {
			topic := &data.Subjects[i].Topics[j]
			if topic.ID != topicID {
				continue
			}
			now := time.Now()
			topic.RevisionCount++
			topic.LastRevised = &now
			topic.ConfidenceLevel = confidence
			if notes != "" {
				topic.Notes = utils.SanitizeNotes(notes)
			}
			if err := s.Save(email, data); err != nil {
				return nil, err
			}
			revised := *topic
			return &revised, nil
		}
	}
	return nil, ErrNotOwned
}

// DeleteTopic removes a topic from a subject.
func (s *DataStore) DeleteTopic(email, subjectID, topicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	for i := range data.Subjects {
		if data.Subjects[i].ID != subjectID {
			continue
		}
		topics := data.Subjects[i].Topics
		for j := range topics {
			if topics[j].ID == topicID {
				data.Subjects[i].Topics = append(topics[:j], topics[j+1:]...)
				return s.Save(email, data)
			}
		}
	}
	return ErrNotOwned
}

// AddMockTest appends a validated mock test.
func (s *DataStore) AddMockTest(email string, test models.MockTest) (*models.MockTest, error) {
	if err := test.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	test.ID = uuid.New().String()
	if test.Date.IsZero() {
		test.Date = time.Now()
	}
	data.MockTests = append(data.MockTests, test)

	if err := s.Save(email, data); err != nil {
		return nil, err
	}
	return &test, nil
}

// DeleteMockTest removes a mock test.
func (s *DataStore) DeleteMockTest(email, testID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := s.Load(email)
	for i := range data.MockTests {
		if data.MockTests[i].ID == testID {
			data.MockTests = append(data.MockTests[:i], data.MockTests[i+1:]...)
			return s.Save(email, data)
		}
	}
	return ErrNotOwned
}

// Preferences reads the user's preferences, falling back to the given
// defaults when the key is missing or unreadable.
func (s *DataStore) Preferences(email string, defaults models.Preferences) models.Preferences {
	raw, err := s.store.Get(PrefsKey(email))
	if err != nil {
		return defaults
	}

	var prefs models.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		utils.Log.Warn("corrupted preferences for %s, using defaults: %v", email, err)
		return defaults
	}
	return prefs
}

// SavePreferences persists the user's preferences.
func (s *DataStore) SavePreferences(email string, prefs models.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %v", err)
	}
	return s.store.Set(PrefsKey(email), raw)
}

// Midnight normalizes a timestamp to the start of its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func emptyUserData() *models.UserData {
	return &models.UserData{
		Subjects:  []models.Subject{},
		MockTests: []models.MockTest{},
		StudyDays: []models.StudyDay{},
	}
}

// normalizeUserData backfills nil slices after decoding older documents.
func normalizeUserData(data *models.UserData) {
	if data.Subjects == nil {
		data.Subjects = []models.Subject{}
	}
	if data.MockTests == nil {
		data.MockTests = []models.MockTest{}
	}
	if data.StudyDays == nil {
		data.StudyDays = []models.StudyDay{}
	}
}

// cloneUserData deep-copies a document so cached state is never aliased by
// callers.
func cloneUserData(data *models.UserData) *models.UserData {
	copied := &models.UserData{
		Subjects:  make([]models.Subject, len(data.Subjects)),
		MockTests: make([]models.MockTest, len(data.MockTests)),
		StudyDays: make([]models.StudyDay, len(data.StudyDays)),
	}
	copy(copied.StudyDays, data.StudyDays)
	for i, test := range data.MockTests {
		copied.MockTests[i] = test
		copied.MockTests[i].Sections = make([]models.TestSection, len(test.Sections))
		copy(copied.MockTests[i].Sections, test.Sections)
	}
	for i, subject := range data.Subjects {
		copied.Subjects[i] = subject
		copied.Subjects[i].Topics = make([]models.Topic, len(subject.Topics))
		copy(copied.Subjects[i].Topics, subject.Topics)
	}
	return copied
}
