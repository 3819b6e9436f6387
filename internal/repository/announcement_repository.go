package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/operai/workforce-api/internal/models"
)

// AnnouncementRepository provides database access for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates a new instance of AnnouncementRepository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// Create inserts an announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, ann *models.Announcement) error {
	if ann.ID == "" {
		ann.ID = uuid.NewString()
	}
	if ann.CreatedAt.IsZero() {
		ann.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO announcements (id, title, content, created_by, target_roles, created_at)
		VALUES (:id, :title, :content, :created_by, :target_roles, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ann); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// FindByID returns an announcement.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id string) (*models.Announcement, error) {
	const query = `SELECT id, title, content, created_by, target_roles, created_at FROM announcements WHERE id = $1 LIMIT 1`
	var ann models.Announcement
	if err := r.db.GetContext(ctx, &ann, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find announcement by id: %w", err)
	}
	return &ann, nil
}

// ListForRole returns announcements visible to a role, newest first. An
// empty target_roles array means the announcement is visible to everyone.
func (r *AnnouncementRepository) ListForRole(ctx context.Context, role models.UserRole, limit int) ([]models.Announcement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT id, title, content, created_by, target_roles, created_at FROM announcements
		WHERE cardinality(target_roles) = 0 OR $1 = ANY(target_roles)
		ORDER BY created_at DESC LIMIT %d`, limit)
	var anns []models.Announcement
	if err := r.db.SelectContext(ctx, &anns, query, string(role)); err != nil {
		return nil, fmt.Errorf("list announcements for role: %w", err)
	}
	return anns, nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM announcements WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete announcement rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
