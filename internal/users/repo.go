package users

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the subset of *pgxpool.Pool the repo uses.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repo struct {
	db Execer
}

func NewRepo(db Execer) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

const ensureUserSQL = `
insert into users (uid, email, display_name, photo_url, updated_at)
values ($1, nullif($2,''), nullif($3,''), nullif($4,''), now())
on conflict (uid) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  photo_url = coalesce(excluded.photo_url, users.photo_url),
  updated_at = now()
`

// EnsureUser creates the user row on first sight and refreshes profile
// fields the identity provider sent, keeping stored values for blanks.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) error {
	if u.UID == "" {
		return fmt.Errorf("uid required")
	}
	if _, err := r.db.Exec(ctx, ensureUserSQL, u.UID, u.Email, u.DisplayName, u.PhotoURL); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}
