package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/repository"
)

// memUserStore is an in-memory UserStore for tests.
type memUserStore struct {
	nextID int64
	users  map[int64]*model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]*model.User)}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	cp.PasswordHash = ""
	return &cp, nil
}

// memPostStore is an in-memory PostStore for tests. Authors maps user ids to
// the public author shape resolved on reads.
type memPostStore struct {
	nextID  int64
	posts   map[int64]*model.Post
	authors map[int64]model.PostAuthor
	now     func() time.Time
}

func newMemPostStore() *memPostStore {
	return &memPostStore{
		posts:   make(map[int64]*model.Post),
		authors: map[int64]model.PostAuthor{1: {Name: "Ann", Email: "ann@x.com"}, 2: {Name: "Bob", Email: "bob@x.com"}},
		now:     time.Now,
	}
}

func (s *memPostStore) resolve(p model.Post) model.Post {
	p.Author = s.authors[p.AuthorID]
	return p
}

func (s *memPostStore) Create(_ context.Context, post *model.Post) error {
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	s.nextID++
	post.ID = s.nextID
	post.CreatedAt = s.now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	s.posts[post.ID] = &cp
	*post = s.resolve(cp)
	return nil
}

func (s *memPostStore) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := s.resolve(*p)
	return &cp, nil
}

func (s *memPostStore) published(p *model.Post) bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(s.now())
}

func (s *memPostStore) GetBySlug(_ context.Context, slug string, publishedOnly bool) (*model.Post, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			if publishedOnly && !s.published(p) {
				return nil, repository.ErrPostNotFound
			}
			cp := s.resolve(*p)
			return &cp, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

func (s *memPostStore) FindIDBySlug(_ context.Context, slug string) (int64, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			return p.ID, nil
		}
	}
	return 0, repository.ErrPostNotFound
}

func (s *memPostStore) Update(_ context.Context, post *model.Post) error {
	existing, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	for _, p := range s.posts {
		if p.ID != post.ID && p.Slug == post.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	cp := *post
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = s.now()
	s.posts[post.ID] = &cp
	*post = s.resolve(cp)
	return nil
}

func (s *memPostStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *memPostStore) matches(p *model.Post, filter repository.PostFilter) bool {
	if filter.PublishedOnly && !s.published(p) {
		return false
	}
	if filter.Tag != "" {
		found := false
		for _, t := range p.Tags {
			if t == strings.ToLower(filter.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" {
		term := strings.ToLower(filter.Search)
		hay := strings.ToLower(p.Title + " " + p.Content + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func (s *memPostStore) List(_ context.Context, filter repository.PostFilter) ([]model.Post, int, error) {
	var all []model.Post
	for _, p := range s.posts {
		if s.matches(p, filter) {
			all = append(all, s.resolve(*p))
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if filter.PublishedOnly {
			return all[i].PublishedAt.After(*all[j].PublishedAt)
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := len(all)
	if filter.Offset >= total {
		return []model.Post{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return all[filter.Offset:end], total, nil
}

func (s *memPostStore) ListByAuthor(_ context.Context, authorID int64) ([]model.Post, error) {
	var out []model.Post
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, s.resolve(*p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memPostStore) CountByAuthor(_ context.Context, authorID int64) (int, error) {
	n := 0
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}
