package pdf

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konelease/leasing-workflow/internal/model"
)

func testContract() (model.Contract, model.Application) {
	now := time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC)
	app := model.Application{
		ID:                   uuid.New(),
		ReferenceNumber:      "LEA-2026-00421",
		EquipmentDescription: "Excavator, 8 tons",
		EquipmentSupplier:    "KoneMyynti Oy",
		EquipmentPrice:       10000,
	}
	contract := model.Contract{
		ID:             uuid.New(),
		ApplicationID:  app.ID,
		ContractNumber: "A000379214",
		Status:         model.ContractStatusSent,
		Lessee: model.Party{
			CompanyName:   "Kaivuri Ky",
			BusinessID:    "7654321-1",
			StreetAddress: "Kaivukatu 1",
			PostalCode:    "00100",
			City:          "Helsinki",
			ContactPerson: "Maija Asiakas",
			Email:         "maija@example.com",
		},
		Lessor: model.Party{
			CompanyName: "Konelease Oy",
			BusinessID:  "1234567-8",
		},
		MonthlyRent:       250,
		LeasePeriodMonths: 36,
		ResidualValue:     1000,
		AdvancePayment:    2000,
		CreatedAt:         now,
	}
	return contract, app
}

func TestRenderUnsignedContract(t *testing.T) {
	contract, app := testContract()

	content, err := NewGenerator().Render(contract, app)
	require.NoError(t, err)
	require.NotEmpty(t, content)
	assert.Equal(t, "%PDF", string(content[:4]))
}

func TestRenderSignedContract(t *testing.T) {
	contract, app := testContract()
	signedAt := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)
	contract.Status = model.ContractStatusSigned
	contract.SignerName = "Maija Asiakas"
	contract.SignaturePlace = "Helsinki"
	contract.SignedAt = &signedAt

	content, err := NewGenerator().Render(contract, app)
	require.NoError(t, err)
	assert.NotEmpty(t, content)
}
