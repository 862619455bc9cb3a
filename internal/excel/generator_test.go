package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/konelease/leasing-workflow/internal/model"
)

func TestGeneratePipelineWorkbook(t *testing.T) {
	report := model.PipelineReport{
		GeneratedAt: time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC),
		Total:       3,
		Groups: []model.PipelineGroup{
			{
				Status: model.ApplicationStatusSubmittedToFinancier,
				Applications: []model.PipelineRow{
					{
						ReferenceNumber: "LEA-2026-00421",
						CompanyName:     "Kaivuri Ky",
						ApplicationType: model.ApplicationTypeLeasing,
						EquipmentPrice:  10000,
						CreatedAt:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
					},
					{
						ReferenceNumber: "REF-2026-00017",
						CompanyName:     "Trukki Oy",
						ApplicationType: model.ApplicationTypeRefinancing,
						EquipmentPrice:  25000,
						CreatedAt:       time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
					},
				},
			},
			{
				Status: model.ApplicationStatusSigned,
				Applications: []model.PipelineRow{
					{
						ReferenceNumber: "LEA-2026-00102",
						CompanyName:     "Nosturi Oy",
						ApplicationType: model.ApplicationTypeLeasing,
						EquipmentPrice:  80000,
						CreatedAt:       time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
					},
				},
			},
		},
	}

	content, err := NewGenerator().Generate(report)
	require.NoError(t, err)
	require.NotEmpty(t, content)

	file, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "SUBMITTED_TO_FINANCIER")
	assert.Contains(t, sheets, "SIGNED")

	total, err := file.GetCellValue("Summary", "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", total)

	ref, err := file.GetCellValue("SUBMITTED_TO_FINANCIER", "A2")
	require.NoError(t, err)
	assert.Equal(t, "LEA-2026-00421", ref)

	company, err := file.GetCellValue("SIGNED", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Nosturi Oy", company)
}
