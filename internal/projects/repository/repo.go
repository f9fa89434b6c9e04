package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

const projectColumns = `id, owner_id, title, description, tech_stack,
       coalesce(image_url, ''), coalesce(download_link, ''), coalesce(live_link, ''),
       featured, created_at, updated_at`

// ProjectRepository provides persistence operations for projects.
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (domain.Project, error) {
	var p domain.Project
	var tech pq.StringArray
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &tech,
		&p.ImageURL, &p.DownloadLink, &p.LiveLink,
		&p.Featured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.TechStack = []string(tech)
	if p.TechStack == nil {
		p.TechStack = []string{}
	}
	return p, nil
}

// List returns non-deleted projects, newest first. An empty ownerID lists
// every owner's projects.
func (r *ProjectRepository) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `
SELECT ` + projectColumns + `
FROM projects
WHERE deleted_at IS NULL AND ($1 = '' OR owner_id = $1)
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	q := `
SELECT ` + projectColumns + `
FROM projects
WHERE id = $1 AND deleted_at IS NULL;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// Create inserts a project for ownerID. Blank tech entries are dropped.
func (r *ProjectRepository) Create(ctx context.Context, ownerID string, in domain.ProjectInput) (*domain.Project, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("owner id required: %w", domain.ErrInvalidInput)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title required: %w", domain.ErrInvalidInput)
	}

	q := `
INSERT INTO projects (id, owner_id, title, description, tech_stack, image_url, download_link, live_link, featured)
VALUES ($1, $2, $3, $4, $5, nullif($6, ''), nullif($7, ''), nullif($8, ''), $9)
RETURNING ` + projectColumns + `;
`
	for i := 0; i < 5; i++ {
		id, err := newProjectID()
		if err != nil {
			return nil, err
		}

		p, err := scanProject(r.db.QueryRowContext(ctx, q,
			id, ownerID, title, in.Description, pq.StringArray(CleanTechStack(in.TechStack)),
			in.ImageURL, in.DownloadLink, in.LiveLink, in.Featured))
		if err == nil {
			return &p, nil
		}

		// unique violation on id → retry
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

// Update applies a partial update to a project owned by ownerID.
func (r *ProjectRepository) Update(ctx context.Context, ownerID, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("title cannot be blank: %w", domain.ErrInvalidInput)
	}

	var tech pq.StringArray
	if patch.TechStack != nil {
		tech = pq.StringArray(CleanTechStack(*patch.TechStack))
	}

	q := `
UPDATE projects
SET title         = coalesce($3, title),
    description   = coalesce($4, description),
    tech_stack    = coalesce($5, tech_stack),
    image_url     = CASE WHEN $6::text IS NULL THEN image_url ELSE nullif($6, '') END,
    download_link = CASE WHEN $7::text IS NULL THEN download_link ELSE nullif($7, '') END,
    live_link     = CASE WHEN $8::text IS NULL THEN live_link ELSE nullif($8, '') END,
    featured      = coalesce($9, featured),
    updated_at    = now()
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, ownerID, id,
		trimmedPtr(patch.Title), nullable(patch.Description), tech,
		nullable(patch.ImageURL), nullable(patch.DownloadLink), nullable(patch.LiveLink),
		nullableBool(patch.Featured)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}

// SoftDelete marks a project as deleted. It reports false when nothing matched.
func (r *ProjectRepository) SoftDelete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `
UPDATE projects
SET deleted_at = now(), updated_at = now()
WHERE owner_id = $1 AND id = $2 AND deleted_at IS NULL;
`
	result, err := r.db.ExecContext(ctx, q, ownerID, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CleanTechStack trims entries and drops blanks, keeping order and duplicates.
func CleanTechStack(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func trimmedPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*s), Valid: true}
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
