package dto

import "github.com/sharinglove/sharinglove-api/internal/models"

// AttachmentInput references a file previously stored through the upload endpoint.
type AttachmentInput struct {
	FilenameOriginal string  `json:"filenameOriginal" validate:"required,max=255"`
	FileURL          string  `json:"fileUrl" validate:"required,max=2048"`
	FileSize         int64   `json:"fileSize" validate:"gte=0"`
	IsImage          bool    `json:"isImage"`
	MimeType         *string `json:"mimeType" validate:"omitempty,max=255"`
}

// CreatePostRequest is the body of POST /posts.
type CreatePostRequest struct {
	BoardType    models.BoardType   `json:"boardType" validate:"required,oneof=NOTICE BUDGET RESOURCE GALLERY"`
	Title        string             `json:"title" validate:"required,max=100"`
	Content      *string            `json:"content"`
	IsPublished  *bool              `json:"isPublished"`
	IsPinned     *bool              `json:"isPinned"`
	Year         *int               `json:"year" validate:"omitempty,gte=1900,lte=2999"`
	BudgetType   *models.BudgetType `json:"budgetType" validate:"omitempty,oneof=BUDGET SETTLEMENT"`
	ThumbnailURL *string            `json:"thumbnailUrl" validate:"omitempty,max=2048"`
	Attachments  []AttachmentInput  `json:"attachments" validate:"max=50,dive"`
}

// UpdatePostRequest is the body of PUT /posts/{id}. Nil fields keep their
// stored value; Attachments always replaces the whole set.
type UpdatePostRequest struct {
	BoardType    models.BoardType   `json:"boardType" validate:"omitempty,oneof=NOTICE BUDGET RESOURCE GALLERY"`
	Title        *string            `json:"title" validate:"omitempty,max=100"`
	Content      *string            `json:"content"`
	IsPublished  *bool              `json:"isPublished"`
	IsPinned     *bool              `json:"isPinned"`
	Year         *int               `json:"year" validate:"omitempty,gte=1900,lte=2999"`
	BudgetType   *models.BudgetType `json:"budgetType" validate:"omitempty,oneof=BUDGET SETTLEMENT"`
	ThumbnailURL *string            `json:"thumbnailUrl" validate:"omitempty,max=2048"`
	Attachments  []AttachmentInput  `json:"attachments" validate:"max=50,dive"`
}

// ListPostsQuery captures GET /posts query parameters.
type ListPostsQuery struct {
	BoardType          string `form:"boardType"`
	Page               int    `form:"page"`
	Limit              int    `form:"limit"`
	Search             string `form:"search"`
	Year               *int   `form:"year"`
	BudgetType         string `form:"budgetType"`
	IncludeUnpublished bool   `form:"includeUnpublished"`
}

// ExportQuery captures GET /admin/posts/export parameters.
type ExportQuery struct {
	BoardType string `form:"boardType"`
	Format    string `form:"format"`
}

// ExportFile is a rendered export ready to be downloaded.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
