package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"preppilot/middleware"
	"preppilot/models"
	"preppilot/stats"
	"preppilot/storage"
	"preppilot/utils"
)

// StudyHandler serves the per-user tracking data: subjects, topics, mock
// tests, study days, and the derived dashboard metrics.
type StudyHandler struct {
	data *storage.DataStore
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(data *storage.DataStore) *StudyHandler {
	return &StudyHandler{data: data}
}

// GetData returns the user's full data document.
func (h *StudyHandler) GetData(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.data.Load(session.Email),
	})
}

// Overview returns the assembled dashboard metrics.
func (h *StudyHandler) Overview(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	data := h.data.Load(session.Email)
	return c.JSON(fiber.Map{
		"success":  true,
		"overview": stats.BuildOverview(data, todayParam(c)),
	})
}

// CreateSubject adds a subject.
func (h *StudyHandler) CreateSubject(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var subject models.Subject
	if err := c.BodyParser(&subject); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	created, err := h.data.AddSubject(session.Email, subject)
	if err != nil {
		return utils.ValidationError(err.Error(), nil)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"subject": created,
	})
}

// UpdateSubject updates a subject's name, score, or color.
func (h *StudyHandler) UpdateSubject(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var subject models.Subject
	if err := c.BodyParser(&subject); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}
	subject.ID = c.Params("id")

	if err := h.data.UpdateSubject(session.Email, subject); err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return utils.NotFoundError("Subject not found", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteSubject removes a subject and its topics.
func (h *StudyHandler) DeleteSubject(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	if err := h.data.DeleteSubject(session.Email, c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return utils.NotFoundError("Subject not found", nil)
		}
		return utils.InternalServerError("Failed to delete subject", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateTopic adds a topic under a subject.
func (h *StudyHandler) CreateTopic(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var topic models.Topic
	if err := c.BodyParser(&topic); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	created, err := h.data.AddTopic(session.Email, c.Params("id"), topic)
	if err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return utils.NotFoundError("Subject not found", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"topic":   created,
	})
}

// LogRevision records a revision pass over a topic.
func (h *StudyHandler) LogRevision(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var req struct {
		Confidence models.ConfidenceLevel `json:"confidence"`
		Notes      string                 `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	topic, err := h.data.LogRevision(session.Email, c.Params("id"), c.Params("topicId"), req.Confidence, req.Notes)
	if err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return utils.NotFoundError("Topic not found", nil)
		}
		return utils.ValidationError(err.Error(), nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"topic":   topic,
	})
}

// DeleteTopic removes a topic.
func (h *StudyHandler) DeleteTopic(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	if err := h.data.DeleteTopic(session.Email, c.Params("id"), c.Params("topicId")); err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return utils.NotFoundError("Topic not found", nil)
		}
		return utils.InternalServerError("Failed to delete topic", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// CreateMockTest records an attempted mock test.
func (h *StudyHandler) CreateMockTest(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var test models.MockTest
	if err := c.BodyParser(&test); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	created, err := h.data.AddMockTest(session.Email, test)
	if err != nil {
		return utils.ValidationError(err.Error(), nil)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"test":    created,
	})
}

// DeleteMockTest removes a mock test.
func (h *StudyHandler) DeleteMockTest(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	if err := h.data.DeleteMockTest(session.Email, c.Params("id")); err != nil {
		if errors.Is(err, storage.ErrNotOwned) {
			return utils.NotFoundError("Test not found", nil)
		}
		return utils.InternalServerError("Failed to delete test", err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkStudyDay marks a calendar day as studied. Re-marking a day overwrites
// its intensity.
func (h *StudyHandler) MarkStudyDay(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	var req struct {
		Date      string `json:"date"` // YYYY-MM-DD, defaults to today
		Intensity int    `json:"intensity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request body", err)
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return utils.ValidationError("Date must be YYYY-MM-DD", err)
		}
		date = parsed
	}

	data, err := h.data.MarkStudyDay(session.Email, date, req.Intensity)
	if err != nil {
		return utils.ValidationError(err.Error(), nil)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"streak":  stats.Streak(data.StudyDays, todayParam(c)),
	})
}

// Streak returns the current consecutive-day streak.
func (h *StudyHandler) Streak(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	data := h.data.Load(session.Email)

	return c.JSON(fiber.Map{
		"success": true,
		"streak":  stats.Streak(data.StudyDays, todayParam(c)),
	})
}

// Calendar returns the study intensity map for one month.
func (h *StudyHandler) Calendar(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)
	data := h.data.Load(session.Email)

	month := time.Now()
	if raw := c.Query("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return utils.ValidationError("Month must be YYYY-MM", err)
		}
		month = parsed
	}

	return c.JSON(fiber.Map{
		"success": true,
		"month":   month.Format("2006-01"),
		"days":    stats.Calendar(data.StudyDays, month),
	})
}

// todayParam lets clients (and tests) pin "today"; defaults to the wall clock.
func todayParam(c *fiber.Ctx) time.Time {
	if raw := c.Query("today"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			return parsed
		}
	}
	return time.Now()
}
