package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'application_status') THEN
			CREATE TYPE application_status AS ENUM (
				'SUBMITTED', 'SUBMITTED_TO_FINANCIER', 'INFO_REQUESTED',
				'OFFER_SENT', 'OFFER_ACCEPTED', 'CONTRACT_SENT', 'SIGNED', 'CLOSED'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'application_type') THEN
			CREATE TYPE application_type AS ENUM ('LEASING', 'REFINANCING');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'offer_status') THEN
			CREATE TYPE offer_status AS ENUM ('DRAFT', 'PENDING_ADMIN', 'SENT', 'ACCEPTED', 'REJECTED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('DRAFT', 'SENT', 'SIGNED', 'CANCELLED');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'info_request_status') THEN
			CREATE TYPE info_request_status AS ENUM ('PENDING', 'RESPONDED', 'CLOSED');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS applications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		reference_number VARCHAR(32) NOT NULL,
		application_type application_type NOT NULL,
		status application_status NOT NULL DEFAULT 'SUBMITTED',
		customer_id UUID NOT NULL,
		company_name VARCHAR(255) NOT NULL,
		business_id VARCHAR(50) NOT NULL,
		contact_person VARCHAR(200),
		contact_email VARCHAR(255) NOT NULL,
		contact_phone VARCHAR(50),
		street_address VARCHAR(255),
		postal_code VARCHAR(20),
		city VARCHAR(100),
		equipment_description TEXT NOT NULL,
		equipment_supplier VARCHAR(255),
		equipment_price NUMERIC(18,2) NOT NULL,
		requested_term_months INT,
		additional_info TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		submitted_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_applications_reference ON applications (reference_number);`,
	`CREATE INDEX IF NOT EXISTS idx_applications_customer ON applications (customer_id);`,
	`CREATE INDEX IF NOT EXISTS idx_applications_status ON applications (status);`,
	`CREATE TABLE IF NOT EXISTS offers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		application_id UUID NOT NULL REFERENCES applications(id),
		status offer_status NOT NULL DEFAULT 'DRAFT',
		monthly_payment NUMERIC(18,2) NOT NULL,
		term_months INT NOT NULL,
		upfront_payment NUMERIC(18,2) NOT NULL DEFAULT 0,
		residual_value NUMERIC(18,2) NOT NULL DEFAULT 0,
		opening_fee NUMERIC(18,2) NOT NULL DEFAULT 0,
		invoice_fee NUMERIC(18,2) NOT NULL DEFAULT 0,
		included_services TEXT,
		notes_to_customer TEXT,
		internal_notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at TIMESTAMPTZ,
		responded_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_offers_application ON offers (application_id);`,
	// At most one offer per application may be outside a terminal status.
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_active ON offers (application_id)
		WHERE status IN ('DRAFT', 'PENDING_ADMIN', 'SENT');`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		application_id UUID NOT NULL REFERENCES applications(id),
		offer_id UUID NOT NULL REFERENCES offers(id),
		contract_number VARCHAR(32) NOT NULL,
		status contract_status NOT NULL DEFAULT 'DRAFT',
		lessee_company_name VARCHAR(255) NOT NULL,
		lessee_business_id VARCHAR(50) NOT NULL,
		lessee_street_address VARCHAR(255),
		lessee_postal_code VARCHAR(20),
		lessee_city VARCHAR(100),
		lessee_contact_person VARCHAR(200),
		lessee_email VARCHAR(255),
		lessee_phone VARCHAR(50),
		lessor_company_name VARCHAR(255) NOT NULL,
		lessor_business_id VARCHAR(50),
		monthly_rent NUMERIC(18,2) NOT NULL,
		lease_period_months INT NOT NULL,
		residual_value NUMERIC(18,2) NOT NULL DEFAULT 0,
		advance_payment NUMERIC(18,2) NOT NULL DEFAULT 0,
		processing_fee NUMERIC(18,2) NOT NULL DEFAULT 0,
		arrangement_fee NUMERIC(18,2) NOT NULL DEFAULT 0,
		document_ref VARCHAR(255),
		signed_document_ref VARCHAR(255),
		signer_name VARCHAR(255),
		signature_place VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at TIMESTAMPTZ,
		signed_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_number ON contracts (contract_number);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_application ON contracts (application_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contracts_active ON contracts (application_id)
		WHERE status IN ('DRAFT', 'SENT');`,
	`CREATE TABLE IF NOT EXISTS info_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		application_id UUID NOT NULL REFERENCES applications(id),
		status info_request_status NOT NULL DEFAULT 'PENDING',
		message TEXT NOT NULL,
		requested_items JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_info_requests_application ON info_requests (application_id);`,
	`CREATE TABLE IF NOT EXISTS info_request_responses (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		info_request_id UUID NOT NULL REFERENCES info_requests(id) ON DELETE CASCADE,
		author_role VARCHAR(20) NOT NULL,
		author_name VARCHAR(255),
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_info_request_responses_request ON info_request_responses (info_request_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		recipient_role VARCHAR(20) NOT NULL,
		recipient_user_id UUID,
		application_id UUID NOT NULL REFERENCES applications(id),
		kind VARCHAR(50) NOT NULL,
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		read_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_role, recipient_user_id, is_read);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
