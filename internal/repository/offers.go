package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/service"
)

type offerRow struct {
	ID               uuid.UUID
	ApplicationID    uuid.UUID
	Status           string
	MonthlyPayment   float64
	TermMonths       int
	UpfrontPayment   float64
	ResidualValue    float64
	OpeningFee       float64
	InvoiceFee       float64
	IncludedServices string
	NotesToCustomer  string
	InternalNotes    string
	CreatedAt        time.Time
	SentAt           *time.Time
	RespondedAt      *time.Time
}

const offerColumns = `
	id, application_id, status, monthly_payment, term_months,
	upfront_payment, residual_value, opening_fee, invoice_fee,
	COALESCE(included_services, '') AS included_services,
	COALESCE(notes_to_customer, '') AS notes_to_customer,
	COALESCE(internal_notes, '') AS internal_notes,
	created_at, sent_at, responded_at
`

func (row offerRow) toModel() *model.Offer {
	return &model.Offer{
		ID:               row.ID,
		ApplicationID:    row.ApplicationID,
		Status:           model.OfferStatus(row.Status),
		MonthlyPayment:   row.MonthlyPayment,
		TermMonths:       row.TermMonths,
		UpfrontPayment:   row.UpfrontPayment,
		ResidualValue:    row.ResidualValue,
		OpeningFee:       row.OpeningFee,
		InvoiceFee:       row.InvoiceFee,
		IncludedServices: row.IncludedServices,
		NotesToCustomer:  row.NotesToCustomer,
		InternalNotes:    row.InternalNotes,
		CreatedAt:        row.CreatedAt,
		SentAt:           row.SentAt,
		RespondedAt:      row.RespondedAt,
	}
}

// CreateOffer inserts a draft while holding the application lock, so the
// one-active-offer check and the insert cannot interleave with a concurrent
// create. A partial unique index backs the same invariant in the schema.
func (r *WorkflowRepository) CreateOffer(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockApplication(tx, offer.ApplicationID); err != nil {
			return err
		}

		var active int64
		err := tx.Raw(`
			SELECT COUNT(*) FROM offers
			WHERE application_id = ? AND status IN ('DRAFT', 'PENDING_ADMIN', 'SENT')
		`, offer.ApplicationID).Scan(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return service.ErrDuplicateActive
		}

		return tx.Exec(`
			INSERT INTO offers (
				id, application_id, status, monthly_payment, term_months,
				upfront_payment, residual_value, opening_fee, invoice_fee,
				included_services, notes_to_customer, internal_notes, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			offer.ID,
			offer.ApplicationID,
			offer.Status,
			offer.MonthlyPayment,
			offer.TermMonths,
			offer.UpfrontPayment,
			offer.ResidualValue,
			offer.OpeningFee,
			offer.InvoiceFee,
			offer.IncludedServices,
			offer.NotesToCustomer,
			offer.InternalNotes,
			offer.CreatedAt,
		).Error
	})
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	return r.GetOffer(ctx, offer.ID)
}

func (r *WorkflowRepository) GetOffer(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var row offerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+offerColumns+`
		FROM offers
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

func (r *WorkflowRepository) ListOffers(ctx context.Context, applicationID uuid.UUID) ([]model.Offer, error) {
	var rows []offerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+offerColumns+`
		FROM offers
		WHERE application_id = ?
		ORDER BY created_at DESC
	`, applicationID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	offers := make([]model.Offer, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, *row.toModel())
	}
	return offers, nil
}

func (r *WorkflowRepository) GetAcceptedOffer(ctx context.Context, applicationID uuid.UUID) (*model.Offer, error) {
	var row offerRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+offerColumns+`
		FROM offers
		WHERE application_id = ? AND status = 'ACCEPTED'
		ORDER BY responded_at DESC
		LIMIT 1
	`, applicationID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return row.toModel(), nil
}

func (r *WorkflowRepository) HasOffers(ctx context.Context, applicationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM offers WHERE application_id = ?
	`, applicationID).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateOfferStatus commits the offer transition and the application status
// change as one unit. Either both rows still match their expected statuses,
// or nothing is written.
func (r *WorkflowRepository) UpdateOfferStatus(ctx context.Context, params service.UpdateOfferStatusParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockApplication(tx, params.ApplicationID); err != nil {
			return err
		}

		res := tx.Exec(`
			UPDATE offers SET
				status = ?,
				sent_at = COALESCE(?, sent_at),
				responded_at = COALESCE(?, responded_at)
			WHERE id = ? AND status = ?
		`, params.To, params.SentAt, params.RespondedAt, params.OfferID, params.From)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return service.ErrStaleStatus
		}

		if params.ApplicationTo == "" {
			return nil
		}
		res = tx.Exec(`
			UPDATE applications SET status = ? WHERE id = ? AND status = ?
		`, params.ApplicationTo, params.ApplicationID, params.ApplicationFrom)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return service.ErrStaleStatus
		}
		return nil
	})
}
