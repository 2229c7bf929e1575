package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sharinglove/sharinglove-api/internal/models"
)

// ErrPinLimitReached is returned when a write would pin more notices than allowed.
var ErrPinLimitReached = errors.New("pinned notice limit reached")

// pinLockKey namespaces the advisory lock serialising pinned-notice writes.
const pinLockKey int64 = 0x5053_5049_4e // "PSPIN"

const postColumns = `id, board_type, title, content, is_published, views, is_pinned, year, budget_type, thumbnail_url, created_at, updated_at`

const attachmentColumns = `id, post_id, filename_original, file_url, file_size, is_image, mime_type, display_order`

// PostRepository persists posts together with their attachments.
type PostRepository struct {
	db *sqlx.DB
}

// NewPostRepository creates the repository.
func NewPostRepository(db *sqlx.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns one page of posts matching filter plus the total match count.
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if !filter.IncludeUnpublished {
		where = append(where, "is_published = TRUE")
	}
	if filter.BoardType != "" {
		args = append(args, filter.BoardType)
		where = append(where, fmt.Sprintf("board_type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, filter.Search)
		where = append(where, fmt.Sprintf("(strpos(title, $%d) > 0 OR strpos(COALESCE(content, ''), $%d) > 0)", len(args), len(args)))
	}
	if filter.Year != nil {
		args = append(args, *filter.Year)
		where = append(where, fmt.Sprintf("year = $%d", len(args)))
	}
	if filter.BudgetType != "" {
		args = append(args, filter.BudgetType)
		where = append(where, fmt.Sprintf("budget_type = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf("SELECT %s FROM posts%s ORDER BY %s LIMIT %d OFFSET %d",
		postColumns, whereClause, orderFor(filter.BoardType), filter.Limit, filter.Offset())
	posts := []models.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM posts"+whereClause, args...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	if err := r.attachTo(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func orderFor(board models.BoardType) string {
	switch board {
	case models.BoardNotice:
		return "is_pinned DESC NULLS LAST, created_at DESC"
	case models.BoardBudget:
		return "year DESC NULLS LAST, created_at DESC"
	default:
		return "created_at DESC"
	}
}

// GetByID returns a post with its ordered attachments, or sql.ErrNoRows.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := fmt.Sprintf("SELECT %s FROM posts WHERE id = $1", postColumns)
	var post models.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	posts := []models.Post{post}
	if err := r.attachTo(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// SetViews overwrites the view counter.
func (r *PostRepository) SetViews(ctx context.Context, id string, views int) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE posts SET views = $2 WHERE id = $1", id, views); err != nil {
		return fmt.Errorf("set post views: %w", err)
	}
	return nil
}

// Create inserts post and its attachments in one transaction. A pinned notice
// is only written while fewer than maxPinned other notices are pinned.
func (r *PostRepository) Create(ctx context.Context, post *models.Post, maxPinned int) (err error) {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create post transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if post.Pinned() {
		if err = checkPinCapacity(ctx, tx, post.ID, maxPinned); err != nil {
			return err
		}
	}

	const insertQuery = `INSERT INTO posts (` + postColumns + `)
VALUES (:id, :board_type, :title, :content, :is_published, :views, :is_pinned, :year, :budget_type, :thumbnail_url, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, post); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	if err = insertAttachments(ctx, tx, post); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create post: %w", err)
	}
	return nil
}

// Update rewrites post and replaces its whole attachment set. It returns
// sql.ErrNoRows when the post does not exist.
func (r *PostRepository) Update(ctx context.Context, post *models.Post, maxPinned int) (err error) {
	post.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update post transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if post.Pinned() {
		if err = checkPinCapacity(ctx, tx, post.ID, maxPinned); err != nil {
			return err
		}
	}

	const updateQuery = `UPDATE posts SET title = :title, content = :content, is_published = :is_published, is_pinned = :is_pinned,
year = :year, budget_type = :budget_type, thumbnail_url = :thumbnail_url, updated_at = :updated_at
WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, updateQuery, post)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM attachments WHERE post_id = $1", post.ID); err != nil {
		return fmt.Errorf("clear attachments: %w", err)
	}
	if err = insertAttachments(ctx, tx, post); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update post: %w", err)
	}
	return nil
}

// Delete removes a post; attachments go with it through ON DELETE CASCADE.
// It returns sql.ErrNoRows when nothing was deleted.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// checkPinCapacity takes a transaction-scoped advisory lock, so concurrent
// writers of pinned notices run their count-then-write one at a time.
func checkPinCapacity(ctx context.Context, tx *sqlx.Tx, postID string, maxPinned int) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", pinLockKey); err != nil {
		return fmt.Errorf("lock pinned notices: %w", err)
	}
	const countQuery = `SELECT COUNT(*) FROM posts WHERE board_type = 'NOTICE' AND is_pinned = TRUE AND id <> $1`
	var pinned int
	if err := tx.GetContext(ctx, &pinned, countQuery, postID); err != nil {
		return fmt.Errorf("count pinned notices: %w", err)
	}
	if pinned >= maxPinned {
		return ErrPinLimitReached
	}
	return nil
}

func insertAttachments(ctx context.Context, tx *sqlx.Tx, post *models.Post) error {
	const query = `INSERT INTO attachments (` + attachmentColumns + `)
VALUES (:id, :post_id, :filename_original, :file_url, :file_size, :is_image, :mime_type, :display_order)`
	for i := range post.Attachments {
		att := &post.Attachments[i]
		att.ID = uuid.NewString()
		att.PostID = post.ID
		att.DisplayOrder = i
		if _, err := tx.NamedExecContext(ctx, query, att); err != nil {
			return fmt.Errorf("insert attachment %d: %w", i, err)
		}
	}
	return nil
}

// attachTo loads attachments for posts with one query, ordered by display order.
func (r *PostRepository) attachTo(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Attachments = []models.Attachment{}
	}

	query := fmt.Sprintf("SELECT %s FROM attachments WHERE post_id = ANY($1) ORDER BY post_id, display_order", attachmentColumns)
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}
	for _, att := range attachments {
		if i, ok := index[att.PostID]; ok {
			posts[i].Attachments = append(posts[i].Attachments, att)
		}
	}
	return nil
}
