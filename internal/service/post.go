package service

import (
	"context"
	"errors"

	"github.com/devsaround/blog-api/internal/apperr"
	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/repository"
	"github.com/devsaround/blog-api/internal/slug"
)

// PostStore is the persistence surface the post flow needs.
type PostStore interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*model.Post, error)
	FindIDBySlug(ctx context.Context, slug string) (int64, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter repository.PostFilter) ([]model.Post, int, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
}

// PostServiceOptions carry the listing policy and page-size bounds.
type PostServiceOptions struct {
	// ShowDrafts switches the public listing and slug lookup to the
	// show-everything variant sorted by creation time.
	ShowDrafts      bool
	DefaultPageSize int
	MaxPageSize     int
}

// PostService implements ownership-checked post CRUD and the public listing.
type PostService struct {
	posts PostStore
	opts  PostServiceOptions
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore, opts PostServiceOptions) *PostService {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 10
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	return &PostService{posts: posts, opts: opts}
}

const derivedExcerptLen = 200

// Create persists a new post owned by authorID. The author id comes from
// the authenticated context only, never from client input. Slug and excerpt
// are derived exactly once, when absent.
func (s *PostService) Create(ctx context.Context, authorID int64, req model.CreatePostRequest) (model.PostResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.PostResponse{}, err
	}

	if req.Slug != "" {
		if _, err := s.posts.FindIDBySlug(ctx, req.Slug); err == nil {
			return model.PostResponse{}, apperr.Conflict("a post with this slug already exists")
		} else if !errors.Is(err, repository.ErrPostNotFound) {
			return model.PostResponse{}, err
		}
	} else {
		req.Slug = slug.FromTitle(req.Title)
		if req.Slug == "" {
			return model.PostResponse{}, apperr.Validation("validation failed",
				apperr.FieldError{Field: "slug", Message: "a slug could not be derived from the title"})
		}
	}

	if req.Excerpt == "" {
		req.Excerpt = slug.Excerpt(req.Content, derivedExcerptLen)
	}

	post := &model.Post{
		Title:         req.Title,
		Slug:          req.Slug,
		Excerpt:       req.Excerpt,
		Content:       req.Content,
		CoverImageURL: req.CoverImageURL,
		Tags:          req.Tags,
		AuthorID:      authorID,
		PublishedAt:   req.PublishedAt,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return model.PostResponse{}, apperr.Conflict("a post with this slug already exists")
		}
		return model.PostResponse{}, err
	}

	return post.Response(), nil
}

// Update merges a patch into an existing post. Only the owning author may
// update; fields absent from the patch keep their prior values and slug and
// excerpt are never re-derived.
func (s *PostService) Update(ctx context.Context, id, authorID int64, req model.UpdatePostRequest) (model.PostResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.PostResponse{}, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return model.PostResponse{}, apperr.NotFound("post not found")
		}
		return model.PostResponse{}, err
	}

	if post.AuthorID != authorID {
		return model.PostResponse{}, apperr.Forbidden("you are not authorized to update this post")
	}

	if req.Slug != nil && *req.Slug != post.Slug {
		existingID, err := s.posts.FindIDBySlug(ctx, *req.Slug)
		if err == nil && existingID != post.ID {
			return model.PostResponse{}, apperr.Conflict("a post with this slug already exists")
		}
		if err != nil && !errors.Is(err, repository.ErrPostNotFound) {
			return model.PostResponse{}, err
		}
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Slug != nil {
		post.Slug = *req.Slug
	}
	if req.Excerpt != nil {
		post.Excerpt = *req.Excerpt
	}
	if req.CoverImageURL != nil {
		post.CoverImageURL = *req.CoverImageURL
	}
	if req.Tags != nil {
		post.Tags = *req.Tags
	}
	if req.PublishedAt.Set {
		post.PublishedAt = req.PublishedAt.Value
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			return model.PostResponse{}, apperr.Conflict("a post with this slug already exists")
		}
		return model.PostResponse{}, err
	}

	return post.Response(), nil
}

// Delete permanently removes a post after the same not-found and ownership
// checks as Update.
func (s *PostService) Delete(ctx context.Context, id, authorID int64) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return apperr.NotFound("post not found")
		}
		return err
	}

	if post.AuthorID != authorID {
		return apperr.Forbidden("you are not authorized to delete this post")
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return apperr.NotFound("post not found")
		}
		return err
	}
	return nil
}

// ListPublic returns a filtered, paginated page of posts.
func (s *PostService) ListPublic(ctx context.Context, query model.ListPostsQuery) (model.PostPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = s.opts.DefaultPageSize
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}

	filter := repository.PostFilter{
		Search:        query.Search,
		Tag:           query.Tag,
		PublishedOnly: !s.opts.ShowDrafts,
		Limit:         limit,
		Offset:        (page - 1) * limit,
	}

	posts, total, err := s.posts.List(ctx, filter)
	if err != nil {
		return model.PostPage{}, err
	}

	totalPages := (total + limit - 1) / limit

	return model.PostPage{
		Posts:      posts,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		Limit:      limit,
	}, nil
}

// GetBySlug fetches a single post by slug, honoring the draft-visibility
// policy.
func (s *PostService) GetBySlug(ctx context.Context, postSlug string) (model.PostResponse, error) {
	post, err := s.posts.GetBySlug(ctx, postSlug, !s.opts.ShowDrafts)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return model.PostResponse{}, apperr.NotFound("post not found")
		}
		return model.PostResponse{}, err
	}
	return post.Response(), nil
}

// GetByID fetches a single post by id regardless of publish state.
func (s *PostService) GetByID(ctx context.Context, id int64) (model.PostResponse, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return model.PostResponse{}, apperr.NotFound("post not found")
		}
		return model.PostResponse{}, err
	}
	return post.Response(), nil
}

// ListByAuthor returns all posts of the given author, newest first.
func (s *PostService) ListByAuthor(ctx context.Context, authorID int64) ([]model.PostResponse, error) {
	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	out := make([]model.PostResponse, len(posts))
	for i := range posts {
		out[i] = posts[i].Response()
	}
	return out, nil
}
