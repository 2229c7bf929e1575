package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/response"
)

type uploader interface {
	Upload(ctx context.Context, files []dto.UploadFile) (*dto.UploadResponse, error)
}

// UploadHandler accepts multipart file batches.
type UploadHandler struct {
	service      uploader
	maxBodyBytes int64
}

// NewUploadHandler constructs the handler. maxBodyBytes caps the whole request.
func NewUploadHandler(svc uploader, maxBodyBytes int64) *UploadHandler {
	return &UploadHandler{service: svc, maxBodyBytes: maxBodyBytes}
}

// Upload godoc
// @Summary Upload files
// @Description Stores a batch of images and documents; the batch is stored completely or not at all
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files (field files or files[])"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrUploadRejected, "upload request is too large"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUploadRejected.Code, appErrors.ErrUploadRejected.Status, "expected a multipart form with files"))
		return
	}
	defer form.RemoveAll() //nolint:errcheck

	headers := append(form.File["files"], form.File["files[]"]...)
	files := make([]dto.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, uploadFile(fh))
	}

	res, err := h.service.Upload(c.Request.Context(), files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

func uploadFile(fh *multipart.FileHeader) dto.UploadFile {
	return dto.UploadFile{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
