package recorder

import (
	"errors"
	"time"

	"backend-pathrecorder/internal/path"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, rec *Recorder, store path.Store, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		if err := rec.Start(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(rec.Status())
	})

	r.Post("/fixes", authMiddleware, func(c *fiber.Ctx) error {
		var fix RawFix
		if err := c.BodyParser(&fix); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if fix.Timestamp.IsZero() {
			fix.Timestamp = time.Now()
		}
		rec.Ingest(fix)
		// Filtering is silent: acceptance is only observable through the
		// status and stream surfaces.
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/pause", authMiddleware, func(c *fiber.Ctx) error {
		rec.Pause(c.Context())
		return c.JSON(rec.Status())
	})

	r.Post("/resume", authMiddleware, func(c *fiber.Ctx) error {
		rec.Resume(c.Context())
		return c.JSON(rec.Status())
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		record, needsName, err := rec.Stop(c.Context())
		if errors.Is(err, ErrNotRecording) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"path": record, "needs_name": needsName})
	})

	r.Post("/edit/:id", authMiddleware, func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, path.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if err := rec.LoadForEditing(c.Context(), record); err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.JSON(rec.Status())
	})

	r.Post("/photos", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Timestamp time.Time `json:"timestamp"`
			ImageRef  string    `json:"image_ref"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.ImageRef == "" {
			return fiber.NewError(fiber.StatusBadRequest, "image_ref required")
		}
		if req.Timestamp.IsZero() {
			req.Timestamp = time.Now()
		}
		photo, err := rec.AddPhoto(c.Context(), req.Timestamp, req.ImageRef)
		if errors.Is(err, ErrNotRecording) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(photo)
	})

	r.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(rec.Status())
	})
}
