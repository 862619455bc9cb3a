package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResidualPercentage(t *testing.T) {
	offer := Offer{ResidualValue: 1000}
	assert.Equal(t, 10.0, offer.ResidualPercentage(10000))

	// Rounds to one decimal.
	offer = Offer{ResidualValue: 1234}
	assert.Equal(t, 12.3, offer.ResidualPercentage(10000))

	offer = Offer{ResidualValue: 1235}
	assert.Equal(t, 12.4, offer.ResidualPercentage(10000))

	offer = Offer{ResidualValue: 1000}
	assert.Equal(t, 0.0, offer.ResidualPercentage(0))
}

func TestFinancedAmount(t *testing.T) {
	app := Application{EquipmentPrice: 10000}
	assert.Equal(t, 8000.0, app.FinancedAmount(2000))
	assert.Equal(t, 10000.0, app.FinancedAmount(0))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, ApplicationStatusClosed.Terminal())
	assert.False(t, ApplicationStatusSigned.Terminal())

	assert.True(t, OfferStatusAccepted.Terminal())
	assert.True(t, OfferStatusRejected.Terminal())
	assert.False(t, OfferStatusSent.Terminal())

	assert.True(t, ContractStatusSigned.Terminal())
	assert.True(t, ContractStatusCancelled.Terminal())
	assert.False(t, ContractStatusSent.Terminal())
}
