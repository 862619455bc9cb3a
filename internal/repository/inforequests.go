package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/service"
)

type infoRequestRow struct {
	ID             uuid.UUID
	ApplicationID  uuid.UUID
	Status         string
	Message        string
	RequestedItems []byte
	CreatedAt      time.Time
}

type infoResponseRow struct {
	ID            uuid.UUID
	InfoRequestID uuid.UUID
	AuthorRole    string
	AuthorName    string
	Message       string
	CreatedAt     time.Time
}

func (row infoRequestRow) toModel() (*model.InfoRequest, error) {
	var items []string
	if len(row.RequestedItems) > 0 {
		if err := json.Unmarshal(row.RequestedItems, &items); err != nil {
			return nil, err
		}
	}
	return &model.InfoRequest{
		ID:             row.ID,
		ApplicationID:  row.ApplicationID,
		Status:         model.InfoRequestStatus(row.Status),
		Message:        row.Message,
		RequestedItems: items,
		CreatedAt:      row.CreatedAt,
	}, nil
}

// CreateInfoRequest inserts the pending request and moves the application
// into the detour in one transaction. When the application already sits in
// INFO_REQUESTED the status write is a no-op predicate on the same value.
func (r *WorkflowRepository) CreateInfoRequest(ctx context.Context, req model.InfoRequest, appFrom, appTo model.ApplicationStatus) (*model.InfoRequest, error) {
	var items []byte
	if len(req.RequestedItems) > 0 {
		encoded, err := json.Marshal(req.RequestedItems)
		if err != nil {
			return nil, err
		}
		items = encoded
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockApplication(tx, req.ApplicationID); err != nil {
			return err
		}

		err := tx.Exec(`
			INSERT INTO info_requests (id, application_id, status, message, requested_items, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, req.ID, req.ApplicationID, req.Status, req.Message, items, req.CreatedAt).Error
		if err != nil {
			return err
		}

		res := tx.Exec(`
			UPDATE applications SET status = ? WHERE id = ? AND status = ?
		`, appTo, req.ApplicationID, appFrom)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return service.ErrStaleStatus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetInfoRequest(ctx, req.ID)
}

func (r *WorkflowRepository) GetInfoRequest(ctx context.Context, id uuid.UUID) (*model.InfoRequest, error) {
	var row infoRequestRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, application_id, status, message, requested_items, created_at
		FROM info_requests
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	req, err := row.toModel()
	if err != nil {
		return nil, err
	}
	req.Responses, err = r.listResponses(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *WorkflowRepository) ListInfoRequests(ctx context.Context, applicationID uuid.UUID) ([]model.InfoRequest, error) {
	var rows []infoRequestRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, application_id, status, message, requested_items, created_at
		FROM info_requests
		WHERE application_id = ?
		ORDER BY created_at DESC
	`, applicationID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	requests := make([]model.InfoRequest, 0, len(rows))
	for _, row := range rows {
		req, err := row.toModel()
		if err != nil {
			return nil, err
		}
		req.Responses, err = r.listResponses(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, nil
}

// RespondInfoRequest appends the response, settles the request, and ends the
// detour when no pending requests remain, all in one transaction.
func (r *WorkflowRepository) RespondInfoRequest(ctx context.Context, params service.RespondInfoRequestParams) (*model.InfoRequest, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockApplication(tx, params.ApplicationID); err != nil {
			return err
		}

		resp := params.Response
		err := tx.Exec(`
			INSERT INTO info_request_responses (id, info_request_id, author_role, author_name, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, resp.ID, resp.InfoRequestID, resp.AuthorRole, resp.AuthorName, resp.Message, resp.CreatedAt).Error
		if err != nil {
			return err
		}

		res := tx.Exec(`
			UPDATE info_requests SET status = ? WHERE id = ? AND status = ?
		`, model.InfoRequestStatusResponded, params.InfoRequestID, model.InfoRequestStatusPending)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return service.ErrStaleStatus
		}

		var pending int64
		err = tx.Raw(`
			SELECT COUNT(*) FROM info_requests
			WHERE application_id = ? AND status = 'PENDING'
		`, params.ApplicationID).Scan(&pending).Error
		if err != nil {
			return err
		}
		if pending > 0 {
			return nil
		}

		// Last pending request settled: the detour ends.
		return tx.Exec(`
			UPDATE applications SET status = ? WHERE id = ? AND status = ?
		`, params.ApplicationReturn, params.ApplicationID, params.ApplicationFrom).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetInfoRequest(ctx, params.InfoRequestID)
}

func (r *WorkflowRepository) CloseInfoRequest(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE info_requests SET status = ? WHERE id = ? AND status = ?
	`, model.InfoRequestStatusClosed, id, model.InfoRequestStatusResponded)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return service.ErrStaleStatus
	}
	return nil
}

func (r *WorkflowRepository) listResponses(ctx context.Context, infoRequestID uuid.UUID) ([]model.InfoRequestResponse, error) {
	var rows []infoResponseRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, info_request_id, author_role,
			COALESCE(author_name, '') AS author_name,
			message, created_at
		FROM info_request_responses
		WHERE info_request_id = ?
		ORDER BY created_at ASC
	`, infoRequestID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	responses := make([]model.InfoRequestResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, model.InfoRequestResponse{
			ID:            row.ID,
			InfoRequestID: row.InfoRequestID,
			AuthorRole:    model.Role(row.AuthorRole),
			AuthorName:    row.AuthorName,
			Message:       row.Message,
			CreatedAt:     row.CreatedAt,
		})
	}
	return responses, nil
}
