package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

// ScreenshotRepository stores the extra images attached to a project.
type ScreenshotRepository struct {
	db *sql.DB
}

func NewScreenshotRepository(db *sql.DB) *ScreenshotRepository {
	return &ScreenshotRepository{db: db}
}

func (r *ScreenshotRepository) List(ctx context.Context, projectID string) ([]domain.Screenshot, error) {
	const q = `
select s.id, s.project_id, s.image_url, coalesce(s.caption, ''), s.display_order, s.created_at
from project_screenshots s
join projects p on p.id = s.project_id and p.deleted_at is null
where s.project_id = $1
order by s.display_order asc, s.created_at asc
`
	rows, err := r.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Screenshot, 0, 8)
	for rows.Next() {
		var s domain.Screenshot
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.ImageURL, &s.Caption, &s.DisplayOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Add appends a screenshot after the project's current last one. The project
// row is locked so concurrent adds get distinct display orders.
func (r *ScreenshotRepository) Add(ctx context.Context, ownerID, projectID, imageURL, caption string) (*domain.Screenshot, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, fmt.Errorf("image url required: %w", domain.ErrInvalidInput)
	}

	id := newScreenshotID()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var ok string
	err = tx.QueryRowContext(ctx, `
select id
from projects
where id = $1
  and owner_id = $2
  and deleted_at is null
for update
`, projectID, ownerID).Scan(&ok)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var next int
	if err := tx.QueryRowContext(ctx, `
select coalesce(max(display_order), -1) + 1
from project_screenshots
where project_id = $1
`, projectID).Scan(&next); err != nil {
		return nil, err
	}

	s := domain.Screenshot{
		ID:           id,
		ProjectID:    projectID,
		ImageURL:     imageURL,
		Caption:      caption,
		DisplayOrder: next,
	}
	err = tx.QueryRowContext(ctx, `
insert into project_screenshots (id, project_id, image_url, caption, display_order)
values ($1, $2, $3, nullif($4, ''), $5)
returning created_at
`, s.ID, s.ProjectID, s.ImageURL, s.Caption, s.DisplayOrder).Scan(&s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert screenshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateCaption changes the caption of a screenshot whose project ownerID owns.
func (r *ScreenshotRepository) UpdateCaption(ctx context.Context, ownerID, screenshotID, caption string) (*domain.Screenshot, error) {
	const q = `
update project_screenshots s
set caption = nullif($3, '')
from projects p
where s.id = $2
  and p.id = s.project_id
  and p.owner_id = $1
  and p.deleted_at is null
returning s.id, s.project_id, s.image_url, coalesce(s.caption, ''), s.display_order, s.created_at
`
	var s domain.Screenshot
	err := r.db.QueryRowContext(ctx, q, ownerID, screenshotID, caption).
		Scan(&s.ID, &s.ProjectID, &s.ImageURL, &s.Caption, &s.DisplayOrder, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update screenshot: %w", err)
	}
	return &s, nil
}

// Delete removes a screenshot and returns the deleted row.
func (r *ScreenshotRepository) Delete(ctx context.Context, ownerID, screenshotID string) (*domain.Screenshot, error) {
	const q = `
delete from project_screenshots s
using projects p
where s.id = $2
  and p.id = s.project_id
  and p.owner_id = $1
returning s.id, s.project_id, s.image_url, coalesce(s.caption, ''), s.display_order, s.created_at
`
	var s domain.Screenshot
	err := r.db.QueryRowContext(ctx, q, ownerID, screenshotID).
		Scan(&s.ID, &s.ProjectID, &s.ImageURL, &s.Caption, &s.DisplayOrder, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("delete screenshot: %w", err)
	}
	return &s, nil
}
