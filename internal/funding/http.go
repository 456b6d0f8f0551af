package funding

import (
	"errors"
	"strconv"

	"launchpad-backend/internal/collateral"
	"launchpad-backend/internal/custody"
	"launchpad-backend/internal/identity"
	"launchpad-backend/internal/oracle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// ParseProjectID reads the :id route param as an int64 project id.
func ParseProjectID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("Invalid project id")
	}
	return id, nil
}

// HTTPStatus maps a service error to its response status. Invariant
// violations are programming errors: they are logged here and surface as 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrProjectNotFound), errors.Is(err, identity.ErrIdentityNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrIncorrectRound),
		errors.Is(err, ErrEvaluationNotStarted),
		errors.Is(err, ErrAuctionNotStarted),
		errors.Is(err, ErrTooLateForRound),
		errors.Is(err, ErrUserHasWinningBid):
		return fiber.StatusConflict
	case errors.Is(err, ErrNotIssuer), errors.Is(err, ErrParticipationToOwnProject):
		return fiber.StatusForbidden
	case errors.Is(err, ErrTooLow),
		errors.Is(err, ErrTooHigh),
		errors.Is(err, ErrTooManyUserParticipations),
		errors.Is(err, ErrProjectSoldOut),
		errors.Is(err, ErrPolicyMismatch),
		errors.Is(err, collateral.ErrForbiddenMultiplier),
		errors.Is(err, collateral.ErrFundingAssetNotAccepted),
		errors.Is(err, collateral.ErrBadMath),
		errors.Is(err, custody.ErrInsufficientBalance),
		errors.Is(err, oracle.ErrPriceUnavailable):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrImpossibleState), errors.Is(err, ErrWapNotSet):
		log.Error().Err(err).Msg("Invariant violation")
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
