package contributions

import (
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// Contribute handles POST /api/v1/projects/:id/contributions.
func (h *Handlers) Contribute(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	var body struct {
		Account string `json:"account"`
		ContributionParams
	}
	if err := c.BodyParser(&body); err != nil || body.Account == "" {
		return response.Error(c, "Account and contribution parameters are required", fiber.StatusBadRequest, nil)
	}
	contribution, err := h.Service.Contribute(c.Context(), projectID, body.Account, body.ContributionParams)
	if err != nil {
		return response.Error(c, err.Error(), funding.HTTPStatus(err), nil)
	}
	return response.SuccessCreated(c, "Contribution recorded", contribution, nil)
}

// List handles GET /api/v1/projects/:id/contributions.
func (h *Handlers) List(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	list, err := h.Service.List(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), funding.HTTPStatus(err), nil)
	}
	return response.Success(c, "Contributions fetched", list, fiber.Map{"count": len(list)})
}
