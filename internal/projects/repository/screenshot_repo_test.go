package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

var screenshotColumns = []string{"id", "project_id", "image_url", "caption", "display_order", "created_at"}

func setupScreenshotRepo(t *testing.T) (*ScreenshotRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewScreenshotRepository(db), mock
}

func TestScreenshotRepository_Add(t *testing.T) {
	repo, mock := setupScreenshotRepo(t)

	t.Run("appends after the last display order", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`select id\s+from projects`).
			WithArgs("proj-1", "owner-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("proj-1"))
		mock.ExpectQuery(`coalesce\(max\(display_order\), -1\) \+ 1`).
			WithArgs("proj-1").
			WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
		mock.ExpectQuery(`insert into project_screenshots`).
			WithArgs(sqlmock.AnyArg(), "proj-1", "https://cdn/x.png", "Overview", 3).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectCommit()

		s, err := repo.Add(context.Background(), "owner-1", "proj-1", "https://cdn/x.png", "Overview")
		require.NoError(t, err)
		assert.Equal(t, 3, s.DisplayOrder)
		assert.Regexp(t, `^shot_`, s.ID)
	})

	t.Run("foreign project", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`select id\s+from projects`).
			WithArgs("proj-1", "intruder").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Add(context.Background(), "intruder", "proj-1", "https://cdn/x.png", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("blank url", func(t *testing.T) {
		_, err := repo.Add(context.Background(), "owner-1", "proj-1", " ", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScreenshotRepository_List(t *testing.T) {
	repo, mock := setupScreenshotRepo(t)
	now := time.Now()

	mock.ExpectQuery(`from project_screenshots`).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows(screenshotColumns).
			AddRow("shot_a", "proj-1", "https://cdn/a.png", "", 0, now).
			AddRow("shot_b", "proj-1", "https://cdn/b.png", "Detail", 1, now))

	shots, err := repo.List(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, shots, 2)
	assert.Equal(t, "Detail", shots[1].Caption)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScreenshotRepository_UpdateAndDelete(t *testing.T) {
	repo, mock := setupScreenshotRepo(t)
	now := time.Now()

	mock.ExpectQuery(`update project_screenshots`).
		WithArgs("owner-1", "shot_a", "New caption").
		WillReturnRows(sqlmock.NewRows(screenshotColumns).
			AddRow("shot_a", "proj-1", "https://cdn/a.png", "New caption", 0, now))

	s, err := repo.UpdateCaption(context.Background(), "owner-1", "shot_a", "New caption")
	require.NoError(t, err)
	assert.Equal(t, "New caption", s.Caption)

	mock.ExpectQuery(`delete from project_screenshots`).
		WithArgs("owner-1", "shot_missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Delete(context.Background(), "owner-1", "shot_missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
