package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/service"
)

type contractRow struct {
	ID                  uuid.UUID
	ApplicationID       uuid.UUID
	OfferID             uuid.UUID
	ContractNumber      string
	Status              string
	LesseeCompanyName   string
	LesseeBusinessID    string
	LesseeStreetAddress string
	LesseePostalCode    string
	LesseeCity          string
	LesseeContactPerson string
	LesseeEmail         string
	LesseePhone         string
	LessorCompanyName   string
	LessorBusinessID    string
	MonthlyRent         float64
	LeasePeriodMonths   int
	ResidualValue       float64
	AdvancePayment      float64
	ProcessingFee       float64
	ArrangementFee      float64
	DocumentRef         string
	SignedDocumentRef   string
	SignerName          string
	SignaturePlace      string
	CreatedAt           time.Time
	SentAt              *time.Time
	SignedAt            *time.Time
}

const contractColumns = `
	id, application_id, offer_id, contract_number, status,
	lessee_company_name, lessee_business_id,
	COALESCE(lessee_street_address, '') AS lessee_street_address,
	COALESCE(lessee_postal_code, '') AS lessee_postal_code,
	COALESCE(lessee_city, '') AS lessee_city,
	COALESCE(lessee_contact_person, '') AS lessee_contact_person,
	COALESCE(lessee_email, '') AS lessee_email,
	COALESCE(lessee_phone, '') AS lessee_phone,
	lessor_company_name,
	COALESCE(lessor_business_id, '') AS lessor_business_id,
	monthly_rent, lease_period_months, residual_value,
	advance_payment, processing_fee, arrangement_fee,
	COALESCE(document_ref, '') AS document_ref,
	COALESCE(signed_document_ref, '') AS signed_document_ref,
	COALESCE(signer_name, '') AS signer_name,
	COALESCE(signature_place, '') AS signature_place,
	created_at, sent_at, signed_at
`

func (row contractRow) toModel() *model.Contract {
	return &model.Contract{
		ID:             row.ID,
		ApplicationID:  row.ApplicationID,
		OfferID:        row.OfferID,
		ContractNumber: row.ContractNumber,
		Status:         model.ContractStatus(row.Status),
		Lessee: model.Party{
			CompanyName:   row.LesseeCompanyName,
			BusinessID:    row.LesseeBusinessID,
			StreetAddress: row.LesseeStreetAddress,
			PostalCode:    row.LesseePostalCode,
			City:          row.LesseeCity,
			ContactPerson: row.LesseeContactPerson,
			Email:         row.LesseeEmail,
			Phone:         row.LesseePhone,
		},
		Lessor: model.Party{
			CompanyName: row.LessorCompanyName,
			BusinessID:  row.LessorBusinessID,
		},
		MonthlyRent:       row.MonthlyRent,
		LeasePeriodMonths: row.LeasePeriodMonths,
		ResidualValue:     row.ResidualValue,
		AdvancePayment:    row.AdvancePayment,
		ProcessingFee:     row.ProcessingFee,
		ArrangementFee:    row.ArrangementFee,
		DocumentRef:       row.DocumentRef,
		SignedDocumentRef: row.SignedDocumentRef,
		SignerName:        row.SignerName,
		SignaturePlace:    row.SignaturePlace,
		CreatedAt:         row.CreatedAt,
		SentAt:            row.SentAt,
		SignedAt:          row.SignedAt,
	}
}

// CreateContract drafts the contract while holding the application lock. The
// application must still carry an accepted offer and no other active
// contract may exist.
func (r *WorkflowRepository) CreateContract(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockApplication(tx, contract.ApplicationID); err != nil {
			return err
		}

		var status string
		err := tx.Raw(`SELECT status FROM applications WHERE id = ?`, contract.ApplicationID).Scan(&status).Error
		if err != nil {
			return err
		}
		if model.ApplicationStatus(status) != model.ApplicationStatusOfferAccepted {
			return service.ErrStaleStatus
		}

		var active int64
		err = tx.Raw(`
			SELECT COUNT(*) FROM contracts
			WHERE application_id = ? AND status IN ('DRAFT', 'SENT')
		`, contract.ApplicationID).Scan(&active).Error
		if err != nil {
			return err
		}
		if active > 0 {
			return service.ErrDuplicateActive
		}

		return tx.Exec(`
			INSERT INTO contracts (
				id, application_id, offer_id, contract_number, status,
				lessee_company_name, lessee_business_id, lessee_street_address,
				lessee_postal_code, lessee_city, lessee_contact_person,
				lessee_email, lessee_phone,
				lessor_company_name, lessor_business_id,
				monthly_rent, lease_period_months, residual_value,
				advance_payment, processing_fee, arrangement_fee, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			contract.ID,
			contract.ApplicationID,
			contract.OfferID,
			contract.ContractNumber,
			contract.Status,
			contract.Lessee.CompanyName,
			contract.Lessee.BusinessID,
			contract.Lessee.StreetAddress,
			contract.Lessee.PostalCode,
			contract.Lessee.City,
			contract.Lessee.ContactPerson,
			contract.Lessee.Email,
			contract.Lessee.Phone,
			contract.Lessor.CompanyName,
			contract.Lessor.BusinessID,
			contract.MonthlyRent,
			contract.LeasePeriodMonths,
			contract.ResidualValue,
			contract.AdvancePayment,
			contract.ProcessingFee,
			contract.ArrangementFee,
			contract.CreatedAt,
		).Error
	})
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	return r.GetContract(ctx, contract.ID)
}

func (r *WorkflowRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
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

func (r *WorkflowRepository) ListContracts(ctx context.Context, applicationID uuid.UUID) ([]model.Contract, error) {
	var rows []contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE application_id = ?
		ORDER BY created_at DESC
	`, applicationID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	contracts := make([]model.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, *row.toModel())
	}
	return contracts, nil
}

func (r *WorkflowRepository) UpdateContractStatus(ctx context.Context, params service.UpdateContractStatusParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockApplication(tx, params.ApplicationID); err != nil {
			return err
		}

		res := tx.Exec(`
			UPDATE contracts SET
				status = ?,
				sent_at = COALESCE(?, sent_at),
				signed_at = COALESCE(?, signed_at),
				signer_name = CASE WHEN ? <> '' THEN ? ELSE signer_name END,
				signature_place = CASE WHEN ? <> '' THEN ? ELSE signature_place END,
				signed_document_ref = CASE WHEN ? <> '' THEN ? ELSE signed_document_ref END
			WHERE id = ? AND status = ?
		`,
			params.To,
			params.SentAt,
			params.SignedAt,
			params.SignerName, params.SignerName,
			params.SignaturePlace, params.SignaturePlace,
			params.SignedDocumentRef, params.SignedDocumentRef,
			params.ContractID, params.From,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return service.ErrStaleStatus
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

func (r *WorkflowRepository) SetContractDocument(ctx context.Context, id uuid.UUID, documentRef string) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE contracts SET document_ref = ? WHERE id = ?
	`, documentRef, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
