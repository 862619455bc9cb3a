package service

import (
	"context"
	"fmt"

	"github.com/konelease/leasing-workflow/internal/model"
)

// statusOrder mirrors the forward direction of the application lifecycle so
// the export reads like the pipeline.
var statusOrder = []model.ApplicationStatus{
	model.ApplicationStatusSubmitted,
	model.ApplicationStatusSubmittedToFinancier,
	model.ApplicationStatusInfoRequested,
	model.ApplicationStatusOfferSent,
	model.ApplicationStatusOfferAccepted,
	model.ApplicationStatusContractSent,
	model.ApplicationStatusSigned,
	model.ApplicationStatusClosed,
}

type PipelineExportResult struct {
	FileName string
	Content  []byte
}

// ExportPipeline builds the admin overview of every application grouped by
// status as an xlsx workbook.
func (s *WorkflowService) ExportPipeline(ctx context.Context, principal model.Principal) (*PipelineExportResult, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: pipeline export", ErrPermissionDenied)
	}

	apps, err := s.store.PipelineRows(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[model.ApplicationStatus][]model.PipelineRow)
	for _, app := range apps {
		byStatus[app.Status] = append(byStatus[app.Status], model.PipelineRow{
			ReferenceNumber: app.ReferenceNumber,
			CompanyName:     app.CompanyName,
			ApplicationType: app.ApplicationType,
			EquipmentPrice:  app.EquipmentPrice,
			CreatedAt:       app.CreatedAt,
		})
	}

	report := model.PipelineReport{
		GeneratedAt: s.now(),
		Total:       len(apps),
	}
	for _, status := range statusOrder {
		rows, ok := byStatus[status]
		if !ok {
			continue
		}
		report.Groups = append(report.Groups, model.PipelineGroup{
			Status:       status,
			Applications: rows,
		})
	}

	content, err := s.reports.Generate(report)
	if err != nil {
		return nil, err
	}
	return &PipelineExportResult{
		FileName: fmt.Sprintf("pipeline-%s.xlsx", report.GeneratedAt.Format("20060102-150405")),
		Content:  content,
	}, nil
}
