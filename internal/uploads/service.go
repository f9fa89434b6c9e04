package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/events"
	"github.com/dataportfolio/portfolio-api/internal/storage/objectstore"
)

var (
	ErrUnknownKind = errors.New("unknown upload kind")
	ErrTooLarge    = errors.New("file too large")
	ErrNotImage    = errors.New("file is not an image")
	ErrEmptyFile   = errors.New("file is empty")
	ErrBadFolder   = errors.New("invalid folder")
	ErrForeignURL  = errors.New("url does not belong to this user")
)

var folderRe = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)*$`)

type Result struct {
	URL         string `json:"url"`
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Service struct {
	store    objectstore.Store
	pub      events.Publisher
	maxBytes int64
	now      func() time.Time
	log      *zap.Logger
}

func NewService(store objectstore.Store, pub events.Publisher, maxBytes int64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, pub: pub, maxBytes: maxBytes, now: time.Now, log: log}
}

// Upload stores body as {owner}/{folder/}{unixMillis}.{ext} and returns its
// public URL. The extension comes from filename, falling back to the sniffed
// content type.
func (s *Service) Upload(ctx context.Context, ownerID, kindName, folder, filename string, body io.Reader) (Result, error) {
	kind, ok := LookupKind(kindName)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, kindName)
	}
	if kind.Folder != "" {
		folder = kind.Folder
	}
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder != "" && !folderRe.MatchString(folder) {
		return Result{}, ErrBadFolder
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return Result{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Result{}, ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return Result{}, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if kind.ImagesOnly && !strings.HasPrefix(mt.String(), "image/") {
		return Result{}, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	key := s.objectKey(ownerID, folder, extension(filename, mt))
	contentType := mt.String()
	if err := s.store.Put(ctx, kind.Bucket, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return Result{}, err
	}

	res := Result{
		URL:         s.store.PublicURL(kind.Bucket, key),
		Bucket:      kind.Bucket,
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}
	s.notify(ctx, kind, ownerID, "uploaded", res.URL)
	return res, nil
}

// Delete removes the object behind a public URL previously returned by Upload.
// Only objects under the caller's own prefix may be removed.
func (s *Service) Delete(ctx context.Context, ownerID, kindName, publicURL string) error {
	kind, ok := LookupKind(kindName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kindName)
	}
	key, err := s.keyFromURL(kind.Bucket, publicURL)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(key, ownerID+"/") {
		return ErrForeignURL
	}
	if err := s.store.Remove(ctx, kind.Bucket, key); err != nil {
		return err
	}
	s.notify(ctx, kind, ownerID, "deleted", "")
	return nil
}

func (s *Service) objectKey(ownerID, folder, ext string) string {
	name := fmt.Sprintf("%d", s.now().UnixMilli())
	if ext != "" {
		name += "." + ext
	}
	if folder == "" {
		return ownerID + "/" + name
	}
	return ownerID + "/" + folder + "/" + name
}

func (s *Service) keyFromURL(bucket, publicURL string) (string, error) {
	u := strings.TrimSpace(publicURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	prefix := s.store.PublicURL(bucket, "")
	if u == "" || !strings.HasPrefix(u, prefix) {
		return "", fmt.Errorf("%w: not a %s url", ErrForeignURL, bucket)
	}
	key := path.Clean(strings.TrimPrefix(u, prefix))
	if key == "." || strings.HasPrefix(key, "../") || strings.Contains(key, "/../") {
		return "", fmt.Errorf("%w: bad object path", ErrForeignURL)
	}
	return key, nil
}

func (s *Service) notify(ctx context.Context, kind Kind, ownerID, action, url string) {
	if kind.Topic == "" || s.pub == nil {
		return
	}
	ev := events.New(kind.Topic, ownerID, action)
	ev.URL = url
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish upload event failed", zap.String("topic", kind.Topic), zap.Error(err))
	}
}

func extension(filename string, mt *mimetype.MIME) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext != "" && len(ext) <= 10 && folderRe.MatchString(ext) {
		return ext
	}
	return strings.TrimPrefix(mt.Extension(), ".")
}
