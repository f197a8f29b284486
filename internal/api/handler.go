package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/insightdelivered/bank-notify/internal/announce"
	"github.com/insightdelivered/bank-notify/internal/dispatcher"
	"github.com/insightdelivered/bank-notify/internal/models"
	"github.com/insightdelivered/bank-notify/internal/settings"
	"github.com/insightdelivered/bank-notify/internal/writer"
)

const version = "1.0.0"

// NotifyResponse is the JSON response from the /api/notify and /api/test endpoints.
type NotifyResponse struct {
	Success      bool                 `json:"success"`
	Error        string               `json:"error,omitempty"`
	Announced    bool                 `json:"announced"`
	ID           string               `json:"id,omitempty"`
	Announcement *models.Announcement `json:"announcement,omitempty"`
}

// SettingsStore is the subset of settings.Store used by the API.
type SettingsStore interface {
	Snapshot() (models.Preferences, float64)
	Values() map[string]any
	Apply(changes map[string]any) error
}

// Announcer hands announcements to the audio layer.
type Announcer interface {
	Play(a models.Announcement) (uuid.UUID, error)
}

// Journal records played announcements.
type Journal interface {
	Record(entries ...writer.Entry) error
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Settings SettingsStore
	Player   Announcer
	// Journal is optional.
	Journal Journal
	Logger  *slog.Logger
}

// NewApp returns a fiber app with the API routes registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "bank-notify",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Post("/api/notify", h.HandleNotify)
	app.Post("/api/test", h.HandleTest)
	app.Get("/api/settings", h.HandleGetSettings)
	app.Put("/api/settings", h.HandlePutSettings)
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// HandleHealth reports liveness and the build version.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": version,
	})
}

// HandleNotify dispatches one notification against the current settings and
// queues the resulting announcement, if any.
func (h *Handler) HandleNotify(c *fiber.Ctx) error {
	var event models.NotificationEvent
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &event); err != nil {
			return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid notification JSON: %v", err))
		}
	}

	prefs, volume := h.Settings.Snapshot()
	a, ok := dispatcher.Dispatch(event, prefs, volume)
	if !ok {
		h.logger().Debug("notification ignored", "title", event.Title)
		return c.JSON(NotifyResponse{Success: true})
	}

	return h.announce(c, a)
}

// HandleTest plays the sample announcement at the configured volume.
func (h *Handler) HandleTest(c *fiber.Ctx) error {
	_, volume := h.Settings.Snapshot()
	return h.announce(c, announce.Sample(volume))
}

func (h *Handler) announce(c *fiber.Ctx, a models.Announcement) error {
	id, err := h.Player.Play(a)
	if err != nil {
		h.logger().Warn("announcement not queued", "source", a.Source, "error", err)
		return writeError(c, fiber.StatusServiceUnavailable, fmt.Sprintf("Playback unavailable: %v", err))
	}

	if h.Journal != nil {
		entry := writer.Entry{ID: id, Time: time.Now(), Announcement: a}
		if err := h.Journal.Record(entry); err != nil {
			h.logger().Error("failed to journal announcement", "id", id, "error", err)
		}
	}

	return c.JSON(NotifyResponse{
		Success:      true,
		Announced:    true,
		ID:           id.String(),
		Announcement: &a,
	})
}

// HandleGetSettings returns every stored setting under its key name.
func (h *Handler) HandleGetSettings(c *fiber.Ctx) error {
	return c.JSON(h.Settings.Values())
}

// HandlePutSettings applies a partial update keyed by the stored key names,
// e.g. {"OCB_enabled": false, "sound_volume": 0.8}.
func (h *Handler) HandlePutSettings(c *fiber.Ctx) error {
	changes := map[string]any{}
	if err := json.Unmarshal(c.Body(), &changes); err != nil {
		return writeError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid settings JSON: %v", err))
	}

	if err := h.Settings.Apply(changes); err != nil {
		if errors.Is(err, settings.ErrUnknownKey) ||
			errors.Is(err, settings.ErrInvalidValue) ||
			errors.Is(err, settings.ErrVolumeOutOfRange) {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(h.Settings.Values())
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	return writeError(c, status, err.Error())
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(NotifyResponse{
		Success: false,
		Error:   msg,
	})
}
