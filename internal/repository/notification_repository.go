package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/model"
)

// NotificationRepository is the durable record of dispatched side effects.
// Customer notifications are scoped to one recipient user; financier and
// admin notifications are role-wide and carry a nil recipient user id.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationRow struct {
	ID              uuid.UUID
	RecipientRole   string
	RecipientUserID *uuid.UUID
	ApplicationID   uuid.UUID
	Kind            string
	Message         string
	IsRead          bool
	CreatedAt       time.Time
	ReadAt          *time.Time
}

func (r *NotificationRepository) Create(ctx context.Context, n model.Notification) error {
	var recipientUserID *uuid.UUID
	if n.RecipientUserID != uuid.Nil {
		recipientUserID = &n.RecipientUserID
	}
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO notifications (id, recipient_role, recipient_user_id, application_id, kind, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.RecipientRole, recipientUserID, n.ApplicationID, n.Kind, n.Message, n.IsRead, n.CreatedAt).Error
}

// List returns the caller's notifications, newest first. Customers only see
// rows addressed to their own user id; staff see their role's rows.
func (r *NotificationRepository) List(ctx context.Context, principal model.Principal, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, recipient_role, recipient_user_id, application_id, kind, message, is_read, created_at, read_at
		FROM notifications
		WHERE recipient_role = ?
	`
	args := []interface{}{principal.Role}
	if principal.IsCustomer() {
		query += ` AND recipient_user_id = ?`
		args = append(args, principal.UserID)
	}
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	var rows []notificationRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	notifications := make([]model.Notification, 0, len(rows))
	for _, row := range rows {
		recipientUserID := uuid.Nil
		if row.RecipientUserID != nil {
			recipientUserID = *row.RecipientUserID
		}
		notifications = append(notifications, model.Notification{
			ID:              row.ID,
			RecipientRole:   model.Role(row.RecipientRole),
			RecipientUserID: recipientUserID,
			ApplicationID:   row.ApplicationID,
			Kind:            model.NotificationKind(row.Kind),
			Message:         row.Message,
			IsRead:          row.IsRead,
			CreatedAt:       row.CreatedAt,
			ReadAt:          row.ReadAt,
		})
	}
	return notifications, nil
}

// MarkRead flips one of the caller's own notifications. A notification
// outside the caller's scope behaves like a missing one.
func (r *NotificationRepository) MarkRead(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE id = ? AND recipient_role = ?`
	args := []interface{}{id, principal.Role}
	if principal.IsCustomer() {
		query += ` AND recipient_user_id = ?`
		args = append(args, principal.UserID)
	}
	res := r.db.WithContext(ctx).Exec(query, args...)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
