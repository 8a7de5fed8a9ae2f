package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/devsaround/blog-api/internal/apperr"
	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/repository"
	"github.com/devsaround/blog-api/internal/slug"
)

// SeederOptions configure where sample content comes from and how slug
// collisions with existing posts are handled.
type SeederOptions struct {
	SourceURL string
	// RequireEmpty rejects seeding for authors that already have posts.
	// When false, seeded slugs get a timestamp+index suffix and seeding
	// always succeeds.
	RequireEmpty bool
}

// Seeder bulk-creates demonstration posts from an external sample source.
type Seeder struct {
	posts  PostStore
	client *http.Client
	opts   SeederOptions
	now    func() time.Time
}

// NewSeeder creates a new Seeder.
func NewSeeder(posts PostStore, opts SeederOptions) *Seeder {
	return &Seeder{
		posts:  posts,
		client: &http.Client{Timeout: 15 * time.Second},
		opts:   opts,
		now:    time.Now,
	}
}

// samplePost matches the JSONPlaceholder post shape.
type samplePost struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

const seedSlugMaxLen = 50

// Seed fetches sample posts and creates them for the author. Returns the
// number of posts created.
func (s *Seeder) Seed(ctx context.Context, authorID int64) (int, error) {
	if s.opts.RequireEmpty {
		n, err := s.posts.CountByAuthor(ctx, authorID)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			return 0, apperr.Conflict("author already has posts")
		}
	}

	samples, err := s.fetchSamples(ctx)
	if err != nil {
		return 0, apperr.BadRequest("failed to fetch sample posts")
	}

	now := s.now()
	created := 0
	for i, sample := range samples {
		postSlug := slug.FromTitle(sample.Title)
		if len(postSlug) > seedSlugMaxLen {
			postSlug = postSlug[:seedSlugMaxLen]
		}
		if !s.opts.RequireEmpty {
			// Disambiguating suffix keeps reseeding collision-free.
			postSlug = fmt.Sprintf("%s-%d-%d", postSlug, now.Unix(), i)
		}

		publishedAt := now
		post := &model.Post{
			Title:         sample.Title,
			Slug:          postSlug,
			Excerpt:       slug.Excerpt(sample.Body, derivedExcerptLen),
			Content:       sample.Body,
			CoverImageURL: fmt.Sprintf("https://picsum.photos/800/400?random=%d", sample.ID),
			Tags:          []string{"sample", "demo", "blog"},
			AuthorID:      authorID,
			PublishedAt:   &publishedAt,
		}

		if err := s.posts.Create(ctx, post); err != nil {
			if errors.Is(err, repository.ErrDuplicateSlug) {
				return created, apperr.Conflict("a post with this slug already exists")
			}
			return created, err
		}
		created++
	}

	return created, nil
}

func (s *Seeder) fetchSamples(ctx context.Context) ([]samplePost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.SourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sample source returned status %d", resp.StatusCode)
	}

	var samples []samplePost
	if err := json.NewDecoder(resp.Body).Decode(&samples); err != nil {
		return nil, err
	}
	return samples, nil
}
