package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/service"
)

// WorkflowRepository persists the four workflow entities. Cross-entity
// writes run in one transaction with the application row locked, and every
// status update carries its expected current status as a predicate.
type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

var _ service.Store = (*WorkflowRepository)(nil)

type applicationRow struct {
	ID                   uuid.UUID
	ReferenceNumber      string
	ApplicationType      string
	Status               string
	CustomerID           uuid.UUID
	CompanyName          string
	BusinessID           string
	ContactPerson        string
	ContactEmail         string
	ContactPhone         string
	StreetAddress        string
	PostalCode           string
	City                 string
	EquipmentDescription string
	EquipmentSupplier    string
	EquipmentPrice       float64
	RequestedTermMonths  *int
	AdditionalInfo       string
	CreatedAt            time.Time
	SubmittedAt          *time.Time
}

const applicationColumns = `
	id, reference_number, application_type, status, customer_id,
	company_name, business_id,
	COALESCE(contact_person, '') AS contact_person,
	contact_email,
	COALESCE(contact_phone, '') AS contact_phone,
	COALESCE(street_address, '') AS street_address,
	COALESCE(postal_code, '') AS postal_code,
	COALESCE(city, '') AS city,
	equipment_description,
	COALESCE(equipment_supplier, '') AS equipment_supplier,
	equipment_price, requested_term_months,
	COALESCE(additional_info, '') AS additional_info,
	created_at, submitted_at
`

func (row applicationRow) toModel() *model.Application {
	return &model.Application{
		ID:                   row.ID,
		ReferenceNumber:      row.ReferenceNumber,
		ApplicationType:      model.ApplicationType(row.ApplicationType),
		Status:               model.ApplicationStatus(row.Status),
		CustomerID:           row.CustomerID,
		CompanyName:          row.CompanyName,
		BusinessID:           row.BusinessID,
		ContactPerson:        row.ContactPerson,
		ContactEmail:         row.ContactEmail,
		ContactPhone:         row.ContactPhone,
		StreetAddress:        row.StreetAddress,
		PostalCode:           row.PostalCode,
		City:                 row.City,
		EquipmentDescription: row.EquipmentDescription,
		EquipmentSupplier:    row.EquipmentSupplier,
		EquipmentPrice:       row.EquipmentPrice,
		RequestedTermMonths:  row.RequestedTermMonths,
		AdditionalInfo:       row.AdditionalInfo,
		CreatedAt:            row.CreatedAt,
		SubmittedAt:          row.SubmittedAt,
	}
}

func (r *WorkflowRepository) CreateApplication(ctx context.Context, app model.Application) (*model.Application, error) {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO applications (
			id, reference_number, application_type, status, customer_id,
			company_name, business_id, contact_person, contact_email, contact_phone,
			street_address, postal_code, city,
			equipment_description, equipment_supplier, equipment_price,
			requested_term_months, additional_info, created_at, submitted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		app.ID,
		app.ReferenceNumber,
		app.ApplicationType,
		app.Status,
		app.CustomerID,
		app.CompanyName,
		app.BusinessID,
		app.ContactPerson,
		app.ContactEmail,
		app.ContactPhone,
		app.StreetAddress,
		app.PostalCode,
		app.City,
		app.EquipmentDescription,
		app.EquipmentSupplier,
		app.EquipmentPrice,
		app.RequestedTermMonths,
		app.AdditionalInfo,
		app.CreatedAt,
		app.SubmittedAt,
	).Error
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	return r.GetApplication(ctx, app.ID)
}

func (r *WorkflowRepository) GetApplication(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var row applicationRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toModel(), nil
}

func (r *WorkflowRepository) ListApplications(ctx context.Context, customerID *uuid.UUID, status *model.ApplicationStatus) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE 1=1`
	var args []interface{}
	if customerID != nil {
		query += ` AND customer_id = ?`
		args = append(args, *customerID)
	}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	var rows []applicationRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	apps := make([]model.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, *row.toModel())
	}
	return apps, nil
}

func (r *WorkflowRepository) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE applications SET status = ? WHERE id = ? AND status = ?
	`, to, id, from)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return service.ErrStaleStatus
	}
	return nil
}

func (r *WorkflowRepository) UpdateApplicationDetails(ctx context.Context, app model.Application) (*model.Application, error) {
	err := r.db.WithContext(ctx).Exec(`
		UPDATE applications SET
			contact_person = ?,
			contact_email = ?,
			contact_phone = ?,
			equipment_description = ?,
			equipment_supplier = ?,
			equipment_price = ?,
			additional_info = ?
		WHERE id = ?
	`,
		app.ContactPerson,
		app.ContactEmail,
		app.ContactPhone,
		app.EquipmentDescription,
		app.EquipmentSupplier,
		app.EquipmentPrice,
		app.AdditionalInfo,
		app.ID,
	).Error
	if err != nil {
		return nil, err
	}
	return r.GetApplication(ctx, app.ID)
}

func (r *WorkflowRepository) PipelineRows(ctx context.Context) ([]model.Application, error) {
	return r.ListApplications(ctx, nil, nil)
}

// translateUniqueViolation maps Postgres unique violations onto the store
// sentinels: generated number collisions become retryable, races on the
// partial active indexes surface as duplicate actives.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if err == nil || !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "uq_applications_reference", "uq_contracts_number":
		return fmt.Errorf("%w: %s", service.ErrDuplicateNumber, pgErr.ConstraintName)
	case "uq_offers_active", "uq_contracts_active":
		return service.ErrDuplicateActive
	}
	return err
}

// lockApplication serializes concurrent commands targeting one application
// for the duration of the surrounding transaction.
func lockApplication(tx *gorm.DB, id uuid.UUID) error {
	var locked uuid.UUID
	if err := tx.Raw(`SELECT id FROM applications WHERE id = ? FOR UPDATE`, id).Scan(&locked).Error; err != nil {
		return err
	}
	if locked == uuid.Nil {
		return gorm.ErrRecordNotFound
	}
	return nil
}
