package model

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/devsaround/blog-api/internal/apperr"
)

const (
	MaxTags       = 10
	MaxExcerptLen = 300
)

// Post represents a post row. A nil PublishedAt means the post is an
// unpublished draft.
type Post struct {
	ID            int64
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	CoverImageURL string
	Tags          []string
	AuthorID      int64
	Author        PostAuthor
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PostAuthor is the owning user resolved to its public fields only.
type PostAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Response returns the outward-facing representation of the post.
func (p *Post) Response() PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:            p.ID,
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		CoverImageURL: p.CoverImageURL,
		Tags:          tags,
		Author:        p.Author,
		PublishedAt:   p.PublishedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PostResponse is the post shape serialized to clients.
type PostResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	Content       string     `json:"content"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Tags          []string   `json:"tags"`
	Author        PostAuthor `json:"author"`
	PublishedAt   *time.Time `json:"published_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// CreatePostRequest is the payload for POST /posts. Slug and excerpt are
// derived from title/content when absent.
type CreatePostRequest struct {
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Slug          string     `json:"slug"`
	Excerpt       string     `json:"excerpt"`
	CoverImageURL string     `json:"cover_image_url"`
	Tags          []string   `json:"tags"`
	PublishedAt   *time.Time `json:"published_at"`
}

// Normalize trims fields and lowercases slug and tags.
func (r *CreatePostRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
	r.Excerpt = strings.TrimSpace(r.Excerpt)
	r.CoverImageURL = strings.TrimSpace(r.CoverImageURL)
	r.Tags = normalizeTags(r.Tags)
}

// Validate checks the create constraints.
func (r *CreatePostRequest) Validate() error {
	var fields []apperr.FieldError

	if n := len([]rune(r.Title)); n < 3 || n > 200 {
		fields = append(fields, apperr.FieldError{Field: "title", Message: "title must be between 3 and 200 characters"})
	}
	if len([]rune(r.Content)) < 10 {
		fields = append(fields, apperr.FieldError{Field: "content", Message: "content must be at least 10 characters"})
	}
	fields = append(fields, checkSlug(r.Slug)...)
	fields = append(fields, checkExcerpt(r.Excerpt)...)
	fields = append(fields, checkCoverImageURL(r.CoverImageURL)...)
	fields = append(fields, checkTags(r.Tags)...)

	if len(fields) > 0 {
		return apperr.Validation("validation failed", fields...)
	}
	return nil
}

// UpdatePostRequest is the payload for PATCH /posts/{id}. Every field is
// optional; nil pointers mean "leave unchanged". PublishedAt distinguishes
// absent from explicit null so a patch can unpublish a post.
type UpdatePostRequest struct {
	Title         *string      `json:"title"`
	Content       *string      `json:"content"`
	Slug          *string      `json:"slug"`
	Excerpt       *string      `json:"excerpt"`
	CoverImageURL *string      `json:"cover_image_url"`
	Tags          *[]string    `json:"tags"`
	PublishedAt   NullableTime `json:"published_at"`
}

// Normalize trims present fields.
func (r *UpdatePostRequest) Normalize() {
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
	}
	if r.Content != nil {
		*r.Content = strings.TrimSpace(*r.Content)
	}
	if r.Slug != nil {
		*r.Slug = strings.ToLower(strings.TrimSpace(*r.Slug))
	}
	if r.Excerpt != nil {
		*r.Excerpt = strings.TrimSpace(*r.Excerpt)
	}
	if r.CoverImageURL != nil {
		*r.CoverImageURL = strings.TrimSpace(*r.CoverImageURL)
	}
	if r.Tags != nil {
		*r.Tags = normalizeTags(*r.Tags)
	}
}

// Validate checks only the fields present in the patch.
func (r *UpdatePostRequest) Validate() error {
	var fields []apperr.FieldError

	if r.Title != nil {
		if n := len([]rune(*r.Title)); n < 3 || n > 200 {
			fields = append(fields, apperr.FieldError{Field: "title", Message: "title must be between 3 and 200 characters"})
		}
	}
	if r.Content != nil && len([]rune(*r.Content)) < 10 {
		fields = append(fields, apperr.FieldError{Field: "content", Message: "content must be at least 10 characters"})
	}
	if r.Slug != nil {
		if *r.Slug == "" {
			fields = append(fields, apperr.FieldError{Field: "slug", Message: "slug cannot be empty"})
		} else {
			fields = append(fields, checkSlug(*r.Slug)...)
		}
	}
	if r.Excerpt != nil {
		fields = append(fields, checkExcerpt(*r.Excerpt)...)
	}
	if r.CoverImageURL != nil {
		fields = append(fields, checkCoverImageURL(*r.CoverImageURL)...)
	}
	if r.Tags != nil {
		fields = append(fields, checkTags(*r.Tags)...)
	}

	if len(fields) > 0 {
		return apperr.Validation("validation failed", fields...)
	}
	return nil
}

// PostPage is a page of posts with pagination metadata.
type PostPage struct {
	Posts      []Post
	Total      int
	TotalPages int
	Page       int
	Limit      int
}

// ListPostsQuery are the recognized filters for the public listing.
type ListPostsQuery struct {
	Search string
	Tag    string
	Page   int
	Limit  int
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func checkSlug(s string) []apperr.FieldError {
	if s == "" {
		return nil
	}
	if len(s) > 200 {
		return []apperr.FieldError{{Field: "slug", Message: "slug cannot exceed 200 characters"}}
	}
	if !slugPattern.MatchString(s) {
		return []apperr.FieldError{{Field: "slug", Message: "slug can only contain lowercase letters, numbers, and hyphens"}}
	}
	return nil
}

func checkExcerpt(s string) []apperr.FieldError {
	if len([]rune(s)) > MaxExcerptLen {
		return []apperr.FieldError{{Field: "excerpt", Message: "excerpt cannot exceed 300 characters"}}
	}
	return nil
}

func checkCoverImageURL(s string) []apperr.FieldError {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []apperr.FieldError{{Field: "cover_image_url", Message: "cover image must be a valid URL"}}
	}
	return nil
}

func checkTags(tags []string) []apperr.FieldError {
	if len(tags) > MaxTags {
		return []apperr.FieldError{{Field: "tags", Message: "cannot have more than 10 tags"}}
	}
	return nil
}
