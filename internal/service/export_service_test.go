package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	"github.com/sharinglove/sharinglove-api/internal/models"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
)

func newExportServiceForTest(repo *fakePostRepo) *ExportService {
	svc := NewExportService(repo, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestExportCSVIncludesDraftsAndPagesThroughBoard(t *testing.T) {
	repo := newFakePostRepo()
	posts := newTestPostService(repo)
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		_, err := posts.Create(ctx, dto.CreatePostRequest{
			BoardType:   models.BoardBudget,
			Title:       fmt.Sprintf("report %d", i),
			Year:        intPtr(2000 + i%20),
			Attachments: attachmentInputs("r.pdf"),
		})
		require.NoError(t, err)
	}
	_, err := posts.Create(ctx, dto.CreatePostRequest{
		BoardType:   models.BoardBudget,
		Title:       "draft settlement",
		IsPublished: boolPtr(false),
		Attachments: attachmentInputs("d.pdf"),
	})
	require.NoError(t, err)
	_, err = posts.Create(ctx, dto.CreatePostRequest{BoardType: models.BoardNotice, Title: "not exported"})
	require.NoError(t, err)

	file, err := newExportServiceForTest(repo).Export(ctx, dto.ExportQuery{BoardType: "budget"})
	require.NoError(t, err)
	assert.Equal(t, "budget-posts-20240301.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	body := string(bytes.TrimPrefix(file.Data, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Equal(t, "Title,Published,Views,Year,Budget Type,Attachments,Created At", lines[0])
	assert.Len(t, lines, 107)
	assert.Contains(t, body, "draft settlement,N,0")
	assert.NotContains(t, body, "not exported")
}

func TestExportPDF(t *testing.T) {
	repo := newFakePostRepo()
	_, err := newTestPostService(repo).Create(context.Background(), dto.CreatePostRequest{BoardType: models.BoardNotice, Title: "Opening hours", IsPinned: boolPtr(true)})
	require.NoError(t, err)

	file, err := newExportServiceForTest(repo).Export(context.Background(), dto.ExportQuery{BoardType: "NOTICE", Format: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
}

func TestExportRejectsBadQuery(t *testing.T) {
	svc := newExportServiceForTest(newFakePostRepo())

	_, err := svc.Export(context.Background(), dto.ExportQuery{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Export(context.Background(), dto.ExportQuery{BoardType: "NOTICE", Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportWrapsListFailure(t *testing.T) {
	repo := newFakePostRepo()
	repo.listErr = errors.New("timeout")

	_, err := newExportServiceForTest(repo).Export(context.Background(), dto.ExportQuery{BoardType: "GALLERY"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
