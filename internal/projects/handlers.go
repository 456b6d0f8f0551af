package projects

import (
	"errors"

	"launchpad-backend/internal/funding"
	"launchpad-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *Service
}

func statusFor(err error) int {
	if errors.Is(err, ErrInvalidMetadata) || errors.Is(err, ErrZeroBond) {
		return fiber.StatusBadRequest
	}
	return funding.HTTPStatus(err)
}

// CreateProject handles POST /api/v1/projects.
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var params CreateProjectParams
	if err := c.BodyParser(&params); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	project, err := h.Service.CreateProject(c.Context(), params)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.SuccessCreated(c, "Project created", project, nil)
}

// StartEvaluation handles POST /api/v1/projects/:id/start-evaluation.
func (h *Handlers) StartEvaluation(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	var body struct {
		Account string `json:"account"`
	}
	if err := c.BodyParser(&body); err != nil || body.Account == "" {
		return response.Error(c, "Account is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.StartEvaluation(c.Context(), projectID, body.Account); err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Evaluation round started", fiber.Map{"project_id": projectID}, nil)
}

// Bond handles POST /api/v1/projects/:id/bond.
func (h *Handlers) Bond(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	var body struct {
		Account   string          `json:"account"`
		UsdAmount decimal.Decimal `json:"usd_amount"`
	}
	if err := c.BodyParser(&body); err != nil || body.Account == "" {
		return response.Error(c, "Account and usd_amount are required", fiber.StatusBadRequest, nil)
	}
	evaluation, err := h.Service.Bond(c.Context(), projectID, body.Account, body.UsdAmount)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.SuccessCreated(c, "Evaluation bond placed", evaluation, nil)
}

// StartAuction handles POST /api/v1/projects/:id/start-auction.
func (h *Handlers) StartAuction(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	var body struct {
		Account string `json:"account"`
	}
	if err := c.BodyParser(&body); err != nil || body.Account == "" {
		return response.Error(c, "Account is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.StartAuction(c.Context(), projectID, body.Account); err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Auction started", fiber.Map{"project_id": projectID}, nil)
}

// GetProject handles GET /api/v1/projects/:id.
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	project, details, err := h.Service.Get(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Project fetched", fiber.Map{
		"project": project,
		"details": details,
	}, nil)
}

// ListProjects handles GET /api/v1/projects.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	list, err := h.Service.List(c.Context())
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Projects fetched", list, fiber.Map{"count": len(list)})
}

// GetObligations handles GET /api/v1/projects/:id/obligations.
func (h *Handlers) GetObligations(c *fiber.Ctx) error {
	projectID, err := funding.ParseProjectID(c)
	if err != nil {
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	}
	entries, err := h.Service.BondedPerAccount(c.Context(), projectID)
	if err != nil {
		return response.Error(c, err.Error(), statusFor(err), nil)
	}
	return response.Success(c, "Obligations computed", entries, fiber.Map{"count": len(entries)})
}
