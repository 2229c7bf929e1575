package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/export"
)

const exportPageSize = 100

type postLister interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ExportService renders one board's posts, drafts included, as a download.
type ExportService struct {
	posts     postLister
	renderers map[string]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the
// defaults of the export package.
func NewExportService(posts postLister, logger *zap.Logger, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	return &ExportService{
		posts:     posts,
		renderers: map[string]renderer{"csv": csv, "pdf": pdf},
		logger:    logger,
		now:       time.Now,
	}
}

// Export renders every post of the requested board.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*dto.ExportFile, error) {
	board := models.BoardType(strings.ToUpper(strings.TrimSpace(query.BoardType)))
	if !board.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "boardType must be one of NOTICE, BUDGET, RESOURCE, GALLERY")
	}
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	posts, err := s.collect(ctx, board)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load posts for export")
	}

	data, err := r.Render(buildDataset(board, posts))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("posts exported", zap.String("board", string(board)), zap.String("format", format), zap.Int("rows", len(posts)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("%s-posts-%s.%s", strings.ToLower(string(board)), s.now().Format("20060102"), r.Extension()),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

func (s *ExportService) collect(ctx context.Context, board models.BoardType) ([]models.Post, error) {
	var all []models.Post
	for page := 1; ; page++ {
		posts, total, err := s.posts.List(ctx, models.PostFilter{
			BoardType:          board,
			IncludeUnpublished: true,
			Page:               page,
			Limit:              exportPageSize,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, posts...)
		if len(posts) == 0 || len(all) >= total {
			return all, nil
		}
	}
}

func buildDataset(board models.BoardType, posts []models.Post) export.Dataset {
	headers := []string{"Title", "Published", "Views"}
	switch board {
	case models.BoardNotice:
		headers = append(headers, "Pinned")
	case models.BoardBudget:
		headers = append(headers, "Year", "Budget Type")
	case models.BoardGallery:
		headers = append(headers, "Thumbnail")
	}
	headers = append(headers, "Attachments", "Created At")

	rows := make([]map[string]string, 0, len(posts))
	for _, p := range posts {
		row := map[string]string{
			"Title":       p.Title,
			"Published":   yesNo(p.IsPublished),
			"Views":       strconv.Itoa(p.Views),
			"Pinned":      yesNo(p.Pinned()),
			"Attachments": strconv.Itoa(len(p.Attachments)),
			"Created At":  p.CreatedAt.Format("2006-01-02 15:04"),
		}
		if p.Year != nil {
			row["Year"] = strconv.Itoa(*p.Year)
		}
		if p.BudgetType != nil {
			row["Budget Type"] = string(*p.BudgetType)
		}
		if p.ThumbnailURL != nil {
			row["Thumbnail"] = *p.ThumbnailURL
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: string(board) + " posts", Headers: headers, Rows: rows}
}

func yesNo(v bool) string {
	if v {
		return "Y"
	}
	return "N"
}
