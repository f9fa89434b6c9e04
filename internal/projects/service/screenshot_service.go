package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
	"github.com/dataportfolio/portfolio-api/internal/uploads"
	"github.com/dataportfolio/portfolio-api/internal/validation"
)

type ScreenshotRepository interface {
	List(ctx context.Context, projectID string) ([]domain.Screenshot, error)
	Add(ctx context.Context, ownerID, projectID, imageURL, caption string) (*domain.Screenshot, error)
	UpdateCaption(ctx context.Context, ownerID, screenshotID, caption string) (*domain.Screenshot, error)
	Delete(ctx context.Context, ownerID, screenshotID string) (*domain.Screenshot, error)
}

// ImageRemover deletes an uploaded object by its public URL.
type ImageRemover interface {
	Delete(ctx context.Context, ownerID, kindName, publicURL string) error
}

// ScreenshotService manages a project's gallery.
type ScreenshotService struct {
	repo     ScreenshotRepository
	projects Repository
	images   ImageRemover
	log      *zap.Logger
}

func NewScreenshotService(repo ScreenshotRepository, projects Repository) *ScreenshotService {
	return &ScreenshotService{repo: repo, projects: projects, log: zap.NewNop()}
}

// WithImageCleanup makes Delete also remove the screenshot's uploaded image.
// Images hosted elsewhere are left alone.
func (s *ScreenshotService) WithImageCleanup(images ImageRemover, log *zap.Logger) *ScreenshotService {
	s.images = images
	if log != nil {
		s.log = log
	}
	return s
}

// List returns screenshots in display order; a missing project is ErrNotFound.
func (s *ScreenshotService) List(ctx context.Context, projectID string) ([]domain.Screenshot, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, projectID)
}

func (s *ScreenshotService) Add(ctx context.Context, ownerID, projectID, imageURL, caption string) (*domain.Screenshot, error) {
	imageURL = strings.TrimSpace(imageURL)
	if err := validation.Var("image_url", imageURL, "required,url"); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := validation.Var("caption", caption, "max=500"); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return s.repo.Add(ctx, ownerID, projectID, imageURL, strings.TrimSpace(caption))
}

func (s *ScreenshotService) UpdateCaption(ctx context.Context, ownerID, screenshotID, caption string) (*domain.Screenshot, error) {
	if err := validation.Var("caption", caption, "max=500"); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return s.repo.UpdateCaption(ctx, ownerID, screenshotID, strings.TrimSpace(caption))
}

// Delete removes the row, then best-effort the stored image. A failed image
// removal is logged and does not fail the call.
func (s *ScreenshotService) Delete(ctx context.Context, ownerID, screenshotID string) error {
	shot, err := s.repo.Delete(ctx, ownerID, screenshotID)
	if err != nil || s.images == nil {
		return err
	}
	err = s.images.Delete(ctx, ownerID, "image", shot.ImageURL)
	if err != nil && !errors.Is(err, uploads.ErrForeignURL) {
		s.log.Warn("screenshot image cleanup failed",
			zap.String("screenshot", shot.ID), zap.String("url", shot.ImageURL), zap.Error(err))
	}
	return nil
}
