package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
	"github.com/sharinglove/sharinglove-api/pkg/response"
)

type exporter interface {
	Export(ctx context.Context, query dto.ExportQuery) (*dto.ExportFile, error)
}

// ExportHandler serves board exports to the admin.
type ExportHandler struct {
	service exporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exporter) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Posts godoc
// @Summary Export a board
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param boardType query string true "NOTICE, BUDGET, RESOURCE or GALLERY"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /admin/posts/export [get]
func (h *ExportHandler) Posts(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
