package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devsaround/blog-api/internal/httpx"
	"github.com/devsaround/blog-api/internal/middleware"
	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/repository"
	"github.com/devsaround/blog-api/internal/service"
	"github.com/devsaround/blog-api/internal/token"
)

// fakeUsers is an in-memory service.UserStore.
type fakeUsers struct {
	nextID int64
	users  map[int64]*model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{users: make(map[int64]*model.User)} }

func (s *fakeUsers) Create(_ context.Context, user *model.User) error {
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

func (s *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// fakePosts is an in-memory service.PostStore resolving authors from the
// sibling fakeUsers.
type fakePosts struct {
	nextID int64
	posts  map[int64]*model.Post
	users  *fakeUsers
}

func newFakePosts(users *fakeUsers) *fakePosts {
	return &fakePosts{posts: make(map[int64]*model.Post), users: users}
}

func (s *fakePosts) resolve(p model.Post) model.Post {
	if u, ok := s.users.users[p.AuthorID]; ok {
		p.Author = model.PostAuthor{Name: u.Name, Email: u.Email}
	}
	return p
}

func (s *fakePosts) Create(_ context.Context, post *model.Post) error {
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	s.nextID++
	post.ID = s.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	s.posts[post.ID] = &cp
	*post = s.resolve(cp)
	return nil
}

func (s *fakePosts) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	cp := s.resolve(*p)
	return &cp, nil
}

func (s *fakePosts) GetBySlug(_ context.Context, slug string, publishedOnly bool) (*model.Post, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			if publishedOnly && (p.PublishedAt == nil || p.PublishedAt.After(time.Now())) {
				return nil, repository.ErrPostNotFound
			}
			cp := s.resolve(*p)
			return &cp, nil
		}
	}
	return nil, repository.ErrPostNotFound
}

func (s *fakePosts) FindIDBySlug(_ context.Context, slug string) (int64, error) {
	for _, p := range s.posts {
		if p.Slug == slug {
			return p.ID, nil
		}
	}
	return 0, repository.ErrPostNotFound
}

func (s *fakePosts) Update(_ context.Context, post *model.Post) error {
	if _, ok := s.posts[post.ID]; !ok {
		return repository.ErrPostNotFound
	}
	for _, p := range s.posts {
		if p.ID != post.ID && p.Slug == post.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	cp := *post
	cp.UpdatedAt = time.Now()
	s.posts[post.ID] = &cp
	*post = s.resolve(cp)
	return nil
}

func (s *fakePosts) Delete(_ context.Context, id int64) error {
	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *fakePosts) List(_ context.Context, filter repository.PostFilter) ([]model.Post, int, error) {
	var all []model.Post
	for _, p := range s.posts {
		if filter.PublishedOnly && (p.PublishedAt == nil || p.PublishedAt.After(time.Now())) {
			continue
		}
		if filter.Tag != "" && !containsTag(p.Tags, filter.Tag) {
			continue
		}
		if filter.Search != "" {
			hay := strings.ToLower(p.Title + " " + p.Content + " " + strings.Join(p.Tags, " "))
			if !strings.Contains(hay, strings.ToLower(filter.Search)) {
				continue
			}
		}
		all = append(all, s.resolve(*p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

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

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == strings.ToLower(tag) {
			return true
		}
	}
	return false
}

func (s *fakePosts) ListByAuthor(_ context.Context, authorID int64) ([]model.Post, error) {
	var out []model.Post
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, s.resolve(*p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakePosts) CountByAuthor(_ context.Context, authorID int64) (int, error) {
	n := 0
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// newTestRouter wires the real handlers, services and auth middleware over
// in-memory stores, mirroring the production route table.
func newTestRouter() http.Handler {
	users := newFakeUsers()
	posts := newFakePosts(users)

	tokens := token.NewService("test-secret", time.Hour)
	translate := httpx.Translator{}

	authHandler := NewAuthHandler(service.NewAuthService(users, tokens), translate)
	postHandler := NewPostHandler(
		service.NewPostService(posts, service.PostServiceOptions{DefaultPageSize: 10, MaxPageSize: 100}),
		service.NewSeeder(posts, service.SeederOptions{SourceURL: "http://127.0.0.1:1/unused", RequireEmpty: true}),
		translate,
	)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Get("/posts", postHandler.HandleList)
		r.Get("/posts/id/{id}", postHandler.HandleGetByID)
		r.Get("/posts/{slug}", postHandler.HandleGetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokens))
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/posts", postHandler.HandleCreate)
			r.Patch("/posts/{id}", postHandler.HandleUpdate)
			r.Delete("/posts/{id}", postHandler.HandleDelete)
			r.Get("/posts/my/posts", postHandler.HandleMyPosts)
			r.Post("/posts/seed", postHandler.HandleSeed)
		})
	})
	return r
}
