package collateral

import (
	"testing"

	"launchpad-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMultiplier_ClassCeilings(t *testing.T) {
	assert.NoError(t, ValidateMultiplier(1, models.InvestorRetail))
	assert.NoError(t, ValidateMultiplier(RetailMaxMultiplier, models.InvestorRetail))
	assert.Equal(t, ErrForbiddenMultiplier, ValidateMultiplier(RetailMaxMultiplier+1, models.InvestorRetail))
	assert.NoError(t, ValidateMultiplier(ProfessionalMaxMultiplier, models.InvestorProfessional))
	assert.Equal(t, ErrForbiddenMultiplier, ValidateMultiplier(ProfessionalMaxMultiplier+1, models.InvestorProfessional))
	assert.NoError(t, ValidateMultiplier(InstitutionalMaxMultiplier, models.InvestorInstitutional))
	assert.Equal(t, ErrForbiddenMultiplier, ValidateMultiplier(0, models.InvestorInstitutional))
}

func TestRequiredBond_DividesByMultiplier(t *testing.T) {
	// 1000 USD at 0.50 USD/PLMC with 1x leverage = 2000 PLMC.
	bond, err := RequiredBond(decimal.NewFromInt(1000), 1, decimal.NewFromFloat(0.5))
	require.NoError(t, err)
	assert.True(t, bond.Equal(decimal.NewFromInt(2000)), bond.String())

	// 5x leverage cuts the bond to a fifth.
	bond, err = RequiredBond(decimal.NewFromInt(1000), 5, decimal.NewFromFloat(0.5))
	require.NoError(t, err)
	assert.True(t, bond.Equal(decimal.NewFromInt(400)), bond.String())
}

func TestRequiredBond_RejectsBadInputs(t *testing.T) {
	_, err := RequiredBond(decimal.NewFromInt(100), 0, decimal.NewFromInt(1))
	assert.Equal(t, ErrForbiddenMultiplier, err)

	_, err = RequiredBond(decimal.NewFromInt(100), 1, decimal.Zero)
	assert.Equal(t, ErrBadMath, err)

	_, err = RequiredBond(decimal.NewFromInt(-1), 1, decimal.NewFromInt(1))
	assert.Equal(t, ErrBadMath, err)
}

func TestRequiredFundingAssetAmount(t *testing.T) {
	// 70 USD of DOT at 7 USD/DOT = 10 DOT.
	amount, err := RequiredFundingAssetAmount(decimal.NewFromInt(70), decimal.NewFromInt(7))
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(10)))

	_, err = RequiredFundingAssetAmount(decimal.NewFromInt(70), decimal.Zero)
	assert.Equal(t, ErrBadMath, err)
}
