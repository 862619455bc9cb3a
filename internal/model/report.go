package model

import "time"

// PipelineReport is the admin export of every application grouped by status.
type PipelineReport struct {
	GeneratedAt time.Time
	Total       int
	Groups      []PipelineGroup
}

type PipelineGroup struct {
	Status       ApplicationStatus
	Applications []PipelineRow
}

type PipelineRow struct {
	ReferenceNumber string
	CompanyName     string
	ApplicationType ApplicationType
	EquipmentPrice  float64
	CreatedAt       time.Time
}
