package path

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, store Store, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		records, err := store.Paths(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if records == nil {
			records = []Record{}
		}
		return c.JSON(records)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(record)
	})

	r.Patch("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name required")
		}
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		record.Name = req.Name
		if err := store.UpdatePath(c.Context(), record); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(record)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := store.DeletePath(c.Context(), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/polylines", func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		lines := SplitSegments(record.Locations)
		if lines == nil {
			lines = []Polyline{}
		}
		return c.JSON(lines)
	})

	r.Get("/:id/region", func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(FitRegion(record.Locations))
	})

	r.Post("/:id/photos", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Photos []CandidatePhoto `json:"photos"`
		}
		if err := c.BodyParser(&req); err != nil || len(req.Photos) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "photos required")
		}
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		added, rejected := AssociatePhotos(record, req.Photos)
		if len(added) > 0 {
			record.Photos = append(record.Photos, added...)
			if err := store.UpdatePath(c.Context(), record); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		if added == nil {
			added = []Photo{}
		}
		if rejected == nil {
			rejected = []CandidatePhoto{}
		}
		return c.JSON(fiber.Map{"added": added, "rejected": rejected})
	})

	r.Get("/:id/photos/clusters", func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		clusters := ClusterPhotos(record.Photos)
		if clusters == nil {
			clusters = []PhotoCluster{}
		}
		return c.JSON(clusters)
	})

	r.Get("/:id/photos/:photoID/nearby", func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		nearby := NearbyPhotos(record.Photos, c.Params("photoID"))
		if nearby == nil {
			return fiber.NewError(fiber.StatusNotFound, "photo not found")
		}
		return c.JSON(nearby)
	})

	r.Delete("/:id/photos/:photoID", authMiddleware, func(c *fiber.Ctx) error {
		record, err := store.PathFor(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		photoID := c.Params("photoID")
		kept := record.Photos[:0:0]
		for _, p := range record.Photos {
			if p.ID != photoID {
				kept = append(kept, p)
			}
		}
		// Photo removal never touches the location history.
		record.Photos = kept
		if err := store.UpdatePath(c.Context(), record); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
