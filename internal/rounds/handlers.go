package rounds

import (
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// Advance handles POST /api/v1/projects/:id/advance. Idempotent: with no
// elapsed deadline it reports zero transitions.
func (h *Handlers) Advance(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	entered, err := h.Service.AdvanceRound(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), funding.HTTPStatus(err), nil)
	}
	return response.Success(c, "Round progression applied", fiber.Map{
		"transitions": entered,
	}, fiber.Map{"count": len(entered)})
}
