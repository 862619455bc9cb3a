package http

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/konelease/leasing-workflow/internal/model"
)

func TestOfferResponseCarriesDerivedFigures(t *testing.T) {
	app := &model.Application{EquipmentPrice: 10000}
	offer := &model.Offer{
		Status:         model.OfferStatusSent,
		MonthlyPayment: 250,
		UpfrontPayment: 2000,
		ResidualValue:  1234,
	}

	resp := offerResponseFrom(offer, app)

	assert.Equal(t, 8000.0, resp.FinancedAmount)
	assert.Equal(t, 12.3, resp.ResidualPercentage)
	assert.Equal(t, 1234.0, resp.ResidualValue)
}
