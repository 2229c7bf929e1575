package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/storage"
)

const (
	sniffLength       = 3072
	uploadParallelism = 4
	thumbnailPrefix   = "thumbs/"
)

var (
	imageExtensions = map[string]struct{}{
		"jpg": {}, "jpeg": {}, "png": {}, "webp": {}, "gif": {},
	}
	documentExtensions = map[string]struct{}{
		"pdf": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {}, "zip": {}, "hwp": {},
	}
)

type objectStore interface {
	Put(ctx context.Context, bucket storage.Bucket, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, bucket storage.Bucket, key string) error
}

// UploadConfig bounds a single upload batch.
type UploadConfig struct {
	MaxFiles        int
	MaxImageSize    int64
	MaxDocumentSize int64
	ThumbnailSize   int
}

// UploadService validates upload batches and writes them to object storage.
type UploadService struct {
	objects objectStore
	logger  *zap.Logger
	metrics *MetricsService
	config  UploadConfig
	now     func() time.Time
}

// NewUploadService constructs the upload service.
func NewUploadService(store objectStore, logger *zap.Logger, metrics *MetricsService, config UploadConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxFiles <= 0 {
		config.MaxFiles = 10
	}
	if config.MaxImageSize <= 0 {
		config.MaxImageSize = 10 << 20
	}
	if config.MaxDocumentSize <= 0 {
		config.MaxDocumentSize = 20 << 20
	}
	if config.ThumbnailSize <= 0 {
		config.ThumbnailSize = 300
	}
	return &UploadService{objects: store, logger: logger, metrics: metrics, config: config, now: time.Now}
}

type storedObject struct {
	bucket storage.Bucket
	key    string
}

// uploadPlan is the validated form of one file; it also tracks what was written.
type uploadPlan struct {
	file    dto.UploadFile
	isImage bool
	bucket  storage.Bucket
	key     string

	result dto.UploadedFile
	stored []storedObject
}

// Upload validates every file before any I/O, then stores the batch in
// parallel. Either every file is stored or none is.
func (s *UploadService) Upload(ctx context.Context, files []dto.UploadFile) (*dto.UploadResponse, error) {
	plans, err := s.plan(files)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadParallelism)
	for i := range plans {
		p := &plans[i]
		g.Go(func() error {
			return s.store(gctx, p)
		})
	}

	if err := g.Wait(); err != nil {
		s.rollback(context.WithoutCancel(ctx), plans)
		for _, p := range plans {
			s.metrics.RecordUpload(string(p.bucket), "failed", p.file.Size)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorageFailure.Code, appErrors.ErrStorageFailure.Status, appErrors.ErrStorageFailure.Message)
	}

	out := &dto.UploadResponse{Files: make([]dto.UploadedFile, 0, len(plans))}
	for _, p := range plans {
		s.metrics.RecordUpload(string(p.bucket), "stored", p.file.Size)
		out.Files = append(out.Files, p.result)
	}
	return out, nil
}

func (s *UploadService) plan(files []dto.UploadFile) ([]uploadPlan, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, "no files were uploaded")
	}
	if len(files) > s.config.MaxFiles {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("at most %d files can be uploaded at once", s.config.MaxFiles))
	}

	now := s.now()
	plans := make([]uploadPlan, 0, len(files))
	for _, f := range files {
		ext := fileExtension(f.Filename)
		_, isImage := imageExtensions[ext]
		_, isDocument := documentExtensions[ext]
		if !isImage && !isDocument {
			s.metrics.RecordUpload("none", "rejected", f.Size)
			return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("%s: file type is not allowed", f.Filename))
		}

		bucket, limit := storage.BucketDocuments, s.config.MaxDocumentSize
		if isImage {
			bucket, limit = storage.BucketImages, s.config.MaxImageSize
		}
		if f.Size > limit {
			s.metrics.RecordUpload(string(bucket), "rejected", f.Size)
			return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("%s: file exceeds the %d MB limit", f.Filename, limit>>20))
		}
		if f.Open == nil {
			return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("%s: file is unreadable", f.Filename))
		}

		key, err := objectKey(now, f.Filename)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
		}
		plans = append(plans, uploadPlan{file: f, isImage: isImage, bucket: bucket, key: key})
	}
	return plans, nil
}

func (s *UploadService) store(ctx context.Context, p *uploadPlan) error {
	rc, err := p.file.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", p.file.Filename, err)
	}
	defer rc.Close() //nolint:errcheck

	// Images are buffered whole (they are bounded by MaxImageSize) so the
	// thumbnail can be rendered from the same bytes.
	var (
		body io.Reader
		head []byte
		data []byte
	)
	if p.isImage {
		data, err = io.ReadAll(io.LimitReader(rc, s.config.MaxImageSize+1))
		if err != nil {
			return fmt.Errorf("read %s: %w", p.file.Filename, err)
		}
		head = data
		body = bytes.NewReader(data)
	} else {
		head = make([]byte, sniffLength)
		n, err := io.ReadFull(rc, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return fmt.Errorf("read %s: %w", p.file.Filename, err)
		}
		head = head[:n]
		body = io.MultiReader(bytes.NewReader(head), rc)
	}

	contentType := reportedMimetype(p.file.ContentType, head)
	url, err := s.objects.Put(ctx, p.bucket, p.key, body, contentType)
	if err != nil {
		return err
	}
	p.stored = append(p.stored, storedObject{bucket: p.bucket, key: p.key})

	p.result = dto.UploadedFile{
		Filename: p.file.Filename,
		URL:      url,
		Size:     p.file.Size,
		Mimetype: contentType,
		IsImage:  p.isImage,
	}
	if p.isImage {
		thumbURL := s.thumbnail(ctx, p, data)
		p.result.ThumbnailURL = &thumbURL
	}
	return nil
}

// thumbnail renders and stores a square preview, falling back to the
// original image URL when the image cannot be processed.
func (s *UploadService) thumbnail(ctx context.Context, p *uploadPlan, data []byte) string {
	thumb, err := renderThumbnail(data, s.config.ThumbnailSize)
	if err != nil {
		s.logger.Debug("thumbnail skipped", zap.String("file", p.file.Filename), zap.Error(err))
		return p.result.URL
	}

	key := thumbnailPrefix + strings.TrimSuffix(p.key, path.Ext(p.key)) + ".jpg"
	url, err := s.objects.Put(ctx, storage.BucketImages, key, bytes.NewReader(thumb), "image/jpeg")
	if err != nil {
		s.logger.Warn("thumbnail upload failed", zap.String("file", p.file.Filename), zap.Error(err))
		return p.result.URL
	}
	p.stored = append(p.stored, storedObject{bucket: storage.BucketImages, key: key})
	return url
}

// rollback deletes every object the batch managed to write.
func (s *UploadService) rollback(ctx context.Context, plans []uploadPlan) {
	var wg sync.WaitGroup
	for i := range plans {
		for _, obj := range plans[i].stored {
			wg.Add(1)
			go func(obj storedObject) {
				defer wg.Done()
				if err := s.objects.Delete(ctx, obj.bucket, obj.key); err != nil {
					s.logger.Warn("upload rollback failed", zap.String("bucket", string(obj.bucket)), zap.String("key", obj.key), zap.Error(err))
				}
			}(obj)
		}
	}
	wg.Wait()
}

// reportedMimetype prefers the client's declared type and falls back to
// sniffing the leading bytes.
func reportedMimetype(declared string, head []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(head).String()
}
