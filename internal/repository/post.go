package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/devsaround/blog-api/internal/model"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

// PostFilter selects rows for the public listing.
type PostFilter struct {
	Search string
	Tag    string
	// PublishedOnly restricts results to posts published on or before now.
	PublishedOnly bool
	Limit         int
	Offset        int
}

// PostRepository handles post persistence operations.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `p.id, p.title, p.slug, p.excerpt, p.content, p.cover_image_url,
	p.tags, p.author_id, p.published_at, p.created_at, p.updated_at,
	u.name, u.email`

const postJoin = `FROM posts p JOIN users u ON u.id = p.author_id`

// Create inserts a new post and sets the generated ID, timestamps and
// resolved author on the post struct. A unique-index violation on slug maps
// to ErrDuplicateSlug; the index is authoritative even when a prior
// existence check passed.
func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (title, slug, excerpt, content, cover_image_url, tags, author_id, published_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Content, post.CoverImageURL,
		tags, post.AuthorID, post.PublishedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateSlug
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	*post = *created
	return nil
}

// GetByID retrieves a post by ID with its author resolved.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.id = ?`, postColumns, postJoin)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetBySlug retrieves a post by slug with its author resolved. With
// publishedOnly set, drafts and future-scheduled posts are not found.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Post, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.slug = ?`, postColumns, postJoin)
	if publishedOnly {
		query += ` AND p.published_at IS NOT NULL AND p.published_at <= NOW()`
	}
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

// FindIDBySlug returns the id of the post owning the given slug, or
// ErrPostNotFound.
func (r *PostRepository) FindIDBySlug(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM posts WHERE slug = ?`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPostNotFound
		}
		return 0, err
	}
	return id, nil
}

// Update writes the mutable columns of an already-merged post. Callers merge
// patch fields into a fetched post first, so absent patch fields keep their
// prior values.
func (r *PostRepository) Update(ctx context.Context, post *model.Post) error {
	tags, err := json.Marshal(post.Tags)
	if err != nil {
		return err
	}

	query := `UPDATE posts
	          SET title = ?, slug = ?, excerpt = ?, content = ?, cover_image_url = ?, tags = ?, published_at = ?
	          WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		post.Title, post.Slug, post.Excerpt, post.Content, post.CoverImageURL,
		tags, post.PublishedAt, post.ID,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateSlug
		}
		return err
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean a no-op write; confirm existence.
		if _, err := r.GetByID(ctx, post.ID); err != nil {
			return err
		}
	}

	updated, err := r.GetByID(ctx, post.ID)
	if err != nil {
		return err
	}
	*post = *updated
	return nil
}

// Delete permanently removes a post.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

// List returns a filtered, paginated slice of posts plus the total match
// count. Published-only listings sort by publish time descending; otherwise
// newest created first.
func (r *PostRepository) List(ctx context.Context, filter PostFilter) ([]model.Post, int, error) {
	var conds []string
	var args []any

	if filter.PublishedOnly {
		conds = append(conds, `p.published_at IS NOT NULL AND p.published_at <= NOW()`)
	}
	if filter.Search != "" {
		term := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		conds = append(conds, `(LOWER(p.title) LIKE ? OR LOWER(p.content) LIKE ? OR LOWER(CAST(p.tags AS CHAR)) LIKE ?)`)
		args = append(args, term, term, term)
	}
	if filter.Tag != "" {
		conds = append(conds, `JSON_CONTAINS(p.tags, JSON_QUOTE(?))`)
		args = append(args, strings.ToLower(filter.Tag))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) %s%s`, postJoin, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY p.created_at DESC`
	if filter.PublishedOnly {
		order = ` ORDER BY p.published_at DESC`
	}

	query := fmt.Sprintf(`SELECT %s %s%s%s LIMIT ? OFFSET ?`, postColumns, postJoin, where, order)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	posts, err := r.scanRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListByAuthor returns all posts of an author, newest created first.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE p.author_id = ? ORDER BY p.created_at DESC`, postColumns, postJoin)

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanRows(rows)
}

// CountByAuthor returns the number of posts owned by an author.
func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = ?`, authorID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostRepository) scanOne(row rowScanner) (*model.Post, error) {
	post := &model.Post{}
	var tags []byte

	err := row.Scan(
		&post.ID, &post.Title, &post.Slug, &post.Excerpt, &post.Content, &post.CoverImageURL,
		&tags, &post.AuthorID, &post.PublishedAt, &post.CreatedAt, &post.UpdatedAt,
		&post.Author.Name, &post.Author.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(tags, &post.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return post, nil
}

func (r *PostRepository) scanRows(rows *sql.Rows) ([]model.Post, error) {
	posts := []model.Post{}
	for rows.Next() {
		post, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// escapeLike escapes LIKE wildcards in a user-supplied search term.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
