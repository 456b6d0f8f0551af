package auction

import (
	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *Service
}

// PlaceBid handles POST /api/v1/projects/:id/bids.
func (h *Handlers) PlaceBid(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	var body struct {
		Account string `json:"account"`
		BidParams
	}
	if err := c.BodyParser(&body); err != nil || body.Account == "" {
		return response.Error(c, "Account and bid parameters are required", fiber.StatusBadRequest, nil)
	}
	bid, err := h.Service.PlaceBid(c.Context(), projectID, body.Account, body.BidParams)
	if err != nil {
		return response.Error(c, err.Error(), funding.HTTPStatus(err), nil)
	}
	return response.SuccessCreated(c, "Bid placed", bid, nil)
}

// ListBids handles GET /api/v1/projects/:id/bids.
func (h *Handlers) ListBids(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	bids, err := h.Service.ListBids(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), funding.HTTPStatus(err), nil)
	}
	return response.Success(c, "Bids fetched", bids, fiber.Map{"count": len(bids)})
}
