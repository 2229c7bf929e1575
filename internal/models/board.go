package models

// BoardFields carries the columns that only make sense for one board. Exactly
// one implementation exists per BoardType.
type BoardFields interface {
	Board() BoardType
	apply(p *Post)
}

// NoticeFields holds notice-only data.
type NoticeFields struct {
	IsPinned bool
}

// BudgetFields holds budget-only data.
type BudgetFields struct {
	Year       *int
	BudgetType *BudgetType
}

// ResourceFields has no board-specific data.
type ResourceFields struct{}

// GalleryFields holds gallery-only data.
type GalleryFields struct {
	ThumbnailURL string
}

func (NoticeFields) Board() BoardType   { return BoardNotice }
func (BudgetFields) Board() BoardType   { return BoardBudget }
func (ResourceFields) Board() BoardType { return BoardResource }
func (GalleryFields) Board() BoardType  { return BoardGallery }

func (f NoticeFields) apply(p *Post) {
	pinned := f.IsPinned
	p.IsPinned = &pinned
}

func (f BudgetFields) apply(p *Post) {
	if f.Year != nil {
		year := *f.Year
		p.Year = &year
	}
	if f.BudgetType != nil {
		bt := *f.BudgetType
		p.BudgetType = &bt
	}
}

func (ResourceFields) apply(*Post) {}

func (f GalleryFields) apply(p *Post) {
	url := f.ThumbnailURL
	p.ThumbnailURL = &url
}

// SetBoardFields sets the post's board and clears every column that belongs
// to another board before applying f.
func (p *Post) SetBoardFields(f BoardFields) {
	p.BoardType = f.Board()
	p.IsPinned = nil
	p.Year = nil
	p.BudgetType = nil
	p.ThumbnailURL = nil
	f.apply(p)
}

// BoardFields reconstructs the variant from the flat columns.
func (p *Post) BoardFields() BoardFields {
	switch p.BoardType {
	case BoardNotice:
		return NoticeFields{IsPinned: p.IsPinned != nil && *p.IsPinned}
	case BoardBudget:
		return BudgetFields{Year: p.Year, BudgetType: p.BudgetType}
	case BoardGallery:
		f := GalleryFields{}
		if p.ThumbnailURL != nil {
			f.ThumbnailURL = *p.ThumbnailURL
		}
		return f
	default:
		return ResourceFields{}
	}
}

// Pinned reports whether p is a pinned notice.
func (p *Post) Pinned() bool {
	return p.BoardType == BoardNotice && p.IsPinned != nil && *p.IsPinned
}
