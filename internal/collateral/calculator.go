// Package collateral converts USD ticket sizes into required native-token
// bonds and funding-asset amounts. Every function is pure so the bid and
// contribution paths can both validate before touching escrow.
package collateral

import (
	"errors"

	"launchpad-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrForbiddenMultiplier     = errors.New("Multiplier not allowed for this investor class")
	ErrBadMath                 = errors.New("Arithmetic over/underflow in collateral conversion")
	ErrFundingAssetNotAccepted = errors.New("Funding asset not accepted by this project")
)

// Maximum leverage per investor class. A multiplier divides the native bond
// required per USD of exposure; higher classes may run more leverage.
const (
	RetailMaxMultiplier        = 5
	ProfessionalMaxMultiplier  = 10
	InstitutionalMaxMultiplier = 25
)

// MaxMultiplier returns the ceiling for an investor class.
func MaxMultiplier(investorType string) int {
	switch investorType {
	case models.InvestorProfessional:
		return ProfessionalMaxMultiplier
	case models.InvestorInstitutional:
		return InstitutionalMaxMultiplier
	default:
		return RetailMaxMultiplier
	}
}

// ValidateMultiplier checks 1 <= multiplier <= class ceiling.
func ValidateMultiplier(multiplier int, investorType string) error {
	if multiplier < 1 || multiplier > MaxMultiplier(investorType) {
		return ErrForbiddenMultiplier
	}
	return nil
}

// RequiredBond converts a USD ticket into the PLMC bond owed at the current
// native price, divided by the leverage multiplier.
func RequiredBond(ticketUSD decimal.Decimal, multiplier int, nativePriceUSD decimal.Decimal) (decimal.Decimal, error) {
	if multiplier < 1 {
		return decimal.Zero, ErrForbiddenMultiplier
	}
	if !nativePriceUSD.IsPositive() || ticketUSD.IsNegative() {
		return decimal.Zero, ErrBadMath
	}
	usdBond := ticketUSD.Div(decimal.NewFromInt(int64(multiplier)))
	return usdBond.Div(nativePriceUSD), nil
}

// RequiredFundingAssetAmount converts a USD ticket into units of the chosen
// funding asset at its oracle price.
func RequiredFundingAssetAmount(ticketUSD decimal.Decimal, assetPriceUSD decimal.Decimal) (decimal.Decimal, error) {
	if !assetPriceUSD.IsPositive() || ticketUSD.IsNegative() {
		return decimal.Zero, ErrBadMath
	}
	return ticketUSD.Div(assetPriceUSD), nil
}
