package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/sharinglove/sharinglove-api/internal/dto"
	"github.com/sharinglove/sharinglove-api/internal/models"
	"github.com/sharinglove/sharinglove-api/internal/repository"
	appErrors "github.com/sharinglove/sharinglove-api/pkg/errors"
)

const (
	defaultPostLimit = 10
	maxPostLimit     = 100
	postListCacheKey = "posts:list:"
)

var editorClass = regexp.MustCompile(`^ql-[a-z0-9-]+$`)

type postRepository interface {
	List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	SetViews(ctx context.Context, id string, views int) error
	Create(ctx context.Context, post *models.Post, maxPinned int) error
	Update(ctx context.Context, post *models.Post, maxPinned int) error
	Delete(ctx context.Context, id string) error
}

// PostService applies board rules on top of the post repository.
type PostService struct {
	repo      postRepository
	validator *validator.Validate
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	policy    *bluemonday.Policy
	maxPinned int
}

// NewPostService constructs the service. maxPinned <= 0 falls back to 3.
func NewPostService(repo postRepository, validate *validator.Validate, cache *CacheService, metrics *MetricsService, logger *zap.Logger, maxPinned int) *PostService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxPinned <= 0 {
		maxPinned = 3
	}
	return &PostService{
		repo:      repo,
		validator: validate,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		policy:    contentPolicy(),
		maxPinned: maxPinned,
	}
}

// contentPolicy keeps what the admin rich text editor produces: alignment and
// indent classes, inline colours and embedded images.
func contentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(editorClass).Globally()
	p.AllowStyles("color", "background-color", "text-align").Globally()
	p.AllowDataURIImages()
	return p
}

// List returns a page of posts. Unpublished posts are only included for admins,
// and only public listings are cached.
func (s *PostService) List(ctx context.Context, query dto.ListPostsQuery, includeUnpublished bool) (*models.PostList, error) {
	filter := models.PostFilter{
		BoardType:          models.BoardType(strings.ToUpper(strings.TrimSpace(query.BoardType))),
		Search:             strings.TrimSpace(query.Search),
		Year:               query.Year,
		BudgetType:         models.BudgetType(strings.ToUpper(strings.TrimSpace(query.BudgetType))),
		IncludeUnpublished: includeUnpublished && query.IncludeUnpublished,
		Page:               query.Page,
		Limit:              query.Limit,
	}
	if filter.BoardType != "" && !filter.BoardType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown boardType")
	}
	if filter.BudgetType != "" && !filter.BudgetType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown budgetType")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPostLimit
	}
	if filter.Limit > maxPostLimit {
		filter.Limit = maxPostLimit
	}

	cacheKey := ""
	if !filter.IncludeUnpublished {
		cacheKey = listCacheKey(filter)
		var cached models.PostList
		if s.cache.Get(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list posts")
	}
	list := &models.PostList{Posts: posts, Pagination: models.NewPagination(filter.Page, filter.Limit, total)}
	if cacheKey != "" {
		s.cache.Set(ctx, cacheKey, list, 0)
	}
	return list, nil
}

// Get returns a post and counts the read. The counter is read then written
// back, so concurrent reads of one post can undercount. Cached public lists
// are not invalidated by reads, so their view counts lag by up to the cache TTL.
func (s *PostService) Get(ctx context.Context, id string, includeUnpublished bool) (*models.Post, error) {
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished && !includeUnpublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}

	views := post.Views + 1
	if err := s.repo.SetViews(ctx, post.ID, views); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record view")
	}
	post.Views = views
	return post, nil
}

// Create validates and stores a new post with its attachments.
func (s *PostService) Create(ctx context.Context, req dto.CreatePostRequest) (*models.Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.BoardType = models.BoardType(strings.ToUpper(string(req.BoardType)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}

	fields := boardFieldsFor(req.BoardType, req.IsPinned, req.Year, req.BudgetType, req.ThumbnailURL)
	if err := checkCreateRules(fields, len(req.Attachments)); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       req.Title,
		Content:     s.sanitize(req.Content),
		IsPublished: req.IsPublished == nil || *req.IsPublished,
		Attachments: toAttachments(req.Attachments),
	}
	post.SetBoardFields(fields)

	if err := s.repo.Create(ctx, post, s.maxPinned); err != nil {
		return nil, s.writeError(err, "failed to create post")
	}

	s.afterWrite(ctx, "create", post)
	return post, nil
}

// Update overwrites the given fields of a post and replaces its attachments.
// The board type of a stored post cannot change.
func (s *PostService) Update(ctx context.Context, id string, req dto.UpdatePostRequest) (*models.Post, error) {
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
		}
		req.Title = &trimmed
	}
	req.BoardType = models.BoardType(strings.ToUpper(string(req.BoardType)))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, validationMessage(err))
	}

	post, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.BoardType != "" && req.BoardType != post.BoardType {
		return nil, appErrors.Clone(appErrors.ErrValidation, "boardType cannot be changed")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = s.sanitize(req.Content)
	}
	if req.IsPublished != nil {
		post.IsPublished = *req.IsPublished
	}

	current := post.BoardFields()
	switch f := current.(type) {
	case models.NoticeFields:
		if req.IsPinned != nil {
			f.IsPinned = *req.IsPinned
		}
		current = f
	case models.BudgetFields:
		if req.Year != nil {
			f.Year = req.Year
		}
		if req.BudgetType != nil {
			f.BudgetType = req.BudgetType
		}
		current = f
	case models.GalleryFields:
		if req.ThumbnailURL != nil {
			f.ThumbnailURL = strings.TrimSpace(*req.ThumbnailURL)
		}
		if f.ThumbnailURL == "" {
			return nil, appErrors.ErrMissingThumbnail
		}
		current = f
	}
	post.SetBoardFields(current)
	post.Attachments = toAttachments(req.Attachments)

	if err := s.repo.Update(ctx, post, s.maxPinned); err != nil {
		return nil, s.writeError(err, "failed to update post")
	}

	s.afterWrite(ctx, "update", post)
	return post, nil
}

// Delete removes a post and its attachments.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if !validPostID(id) {
		return appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete post")
	}
	s.cache.Invalidate(ctx, postListCacheKey+"*")
	s.metrics.RecordPostWrite("delete", "")
	s.logger.Info("post deleted", zap.String("post_id", id))
	return nil
}

func (s *PostService) load(ctx context.Context, id string) (*models.Post, error) {
	if !validPostID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get post")
	}
	return post, nil
}

// validPostID reports whether id can name a stored post; ids are UUIDs.
func validPostID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *PostService) writeError(err error, message string) error {
	if errors.Is(err, repository.ErrPinLimitReached) {
		return appErrors.Clone(appErrors.ErrPinLimitExceeded, fmt.Sprintf("at most %d notices can be pinned", s.maxPinned))
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *PostService) afterWrite(ctx context.Context, op string, post *models.Post) {
	s.cache.Invalidate(ctx, postListCacheKey+"*")
	s.metrics.RecordPostWrite(op, string(post.BoardType))
	s.logger.Info("post saved", zap.String("operation", op), zap.String("post_id", post.ID), zap.String("board", string(post.BoardType)))
}

func (s *PostService) sanitize(content *string) *string {
	if content == nil {
		return nil
	}
	clean := s.policy.Sanitize(*content)
	return &clean
}

func boardFieldsFor(board models.BoardType, pinned *bool, year *int, budgetType *models.BudgetType, thumbnail *string) models.BoardFields {
	switch board {
	case models.BoardNotice:
		return models.NoticeFields{IsPinned: pinned != nil && *pinned}
	case models.BoardBudget:
		return models.BudgetFields{Year: year, BudgetType: budgetType}
	case models.BoardGallery:
		f := models.GalleryFields{}
		if thumbnail != nil {
			f.ThumbnailURL = strings.TrimSpace(*thumbnail)
		}
		return f
	default:
		return models.ResourceFields{}
	}
}

func checkCreateRules(fields models.BoardFields, attachments int) error {
	switch f := fields.(type) {
	case models.BudgetFields:
		if attachments == 0 {
			return appErrors.ErrMissingAttachment
		}
	case models.GalleryFields:
		if f.ThumbnailURL == "" {
			return appErrors.ErrMissingThumbnail
		}
	}
	return nil
}

func toAttachments(inputs []dto.AttachmentInput) []models.Attachment {
	out := make([]models.Attachment, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, models.Attachment{
			FilenameOriginal: in.FilenameOriginal,
			FileURL:          in.FileURL,
			FileSize:         in.FileSize,
			IsImage:          in.IsImage,
			MimeType:         in.MimeType,
		})
	}
	return out
}

func listCacheKey(f models.PostFilter) string {
	year := ""
	if f.Year != nil {
		year = fmt.Sprint(*f.Year)
	}
	return fmt.Sprintf("%sboard=%s:year=%s:budget=%s:page=%d:limit=%d:q=%s",
		postListCacheKey, f.BoardType, year, f.BudgetType, f.Page, f.Limit, f.Search)
}

// validationMessage names the first failing field.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("%s is invalid (%s)", lowerFirst(fe.Field()), fe.Tag())
	}
	return "invalid payload"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
