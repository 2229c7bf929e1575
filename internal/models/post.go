package models

import "time"

// BoardType identifies which public board a post belongs to.
type BoardType string

const (
	BoardNotice   BoardType = "NOTICE"
	BoardBudget   BoardType = "BUDGET"
	BoardResource BoardType = "RESOURCE"
	BoardGallery  BoardType = "GALLERY"
)

// Valid reports whether b is a known board.
func (b BoardType) Valid() bool {
	switch b {
	case BoardNotice, BoardBudget, BoardResource, BoardGallery:
		return true
	}
	return false
}

// BudgetType distinguishes budget plans from settlement reports.
type BudgetType string

const (
	BudgetTypeBudget     BudgetType = "BUDGET"
	BudgetTypeSettlement BudgetType = "SETTLEMENT"
)

func (b BudgetType) Valid() bool {
	return b == BudgetTypeBudget || b == BudgetTypeSettlement
}

// Post is a persisted board entry. The board-specific columns (IsPinned, Year,
// BudgetType, ThumbnailURL) are written only through SetBoardFields.
type Post struct {
	ID           string       `db:"id" json:"id"`
	BoardType    BoardType    `db:"board_type" json:"boardType"`
	Title        string       `db:"title" json:"title"`
	Content      *string      `db:"content" json:"content"`
	IsPublished  bool         `db:"is_published" json:"isPublished"`
	Views        int          `db:"views" json:"views"`
	IsPinned     *bool        `db:"is_pinned" json:"isPinned"`
	Year         *int         `db:"year" json:"year"`
	BudgetType   *BudgetType  `db:"budget_type" json:"budgetType"`
	ThumbnailURL *string      `db:"thumbnail_url" json:"thumbnailUrl"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
	Attachments  []Attachment `db:"-" json:"attachments"`
}

// Attachment is a file owned by a post, rendered in DisplayOrder.
type Attachment struct {
	ID               string  `db:"id" json:"id"`
	PostID           string  `db:"post_id" json:"postId"`
	FilenameOriginal string  `db:"filename_original" json:"filenameOriginal"`
	FileURL          string  `db:"file_url" json:"fileUrl"`
	FileSize         int64   `db:"file_size" json:"fileSize"`
	IsImage          bool    `db:"is_image" json:"isImage"`
	MimeType         *string `db:"mime_type" json:"mimeType"`
	DisplayOrder     int     `db:"display_order" json:"displayOrder"`
}

// PostFilter narrows a listing. Zero values mean "no filter".
type PostFilter struct {
	BoardType          BoardType
	Search             string
	Year               *int
	BudgetType         BudgetType
	IncludeUnpublished bool
	Page               int
	Limit              int
}

// Offset returns the number of rows skipped for the filter's page.
func (f PostFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// Pagination describes the page returned by a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination derives TotalPages by rounding up total/limit.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// PostList is a page of posts.
type PostList struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
