package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/devsaround/blog-api/internal/httpx"
	"github.com/devsaround/blog-api/internal/middleware"
	"github.com/devsaround/blog-api/internal/model"
	"github.com/devsaround/blog-api/internal/service"
)

// PostHandler handles HTTP requests for post operations.
type PostHandler struct {
	service   *service.PostService
	seeder    *service.Seeder
	translate httpx.Translator
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, seeder *service.Seeder, translate httpx.Translator) *PostHandler {
	return &PostHandler{service: svc, seeder: seeder, translate: translate}
}

// HandleList handles GET /api/v1/posts requests.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := model.ListPostsQuery{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		query.Limit = limit
	}

	result, err := h.service.ListPublic(r.Context(), query)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	posts := make([]model.PostResponse, len(result.Posts))
	for i := range result.Posts {
		posts[i] = result.Posts[i].Response()
	}

	httpx.SuccessMeta(w, http.StatusOK, "posts fetched successfully",
		map[string]any{"posts": posts},
		httpx.Meta{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		})
}

// HandleGetBySlug handles GET /api/v1/posts/{slug} requests.
func (h *PostHandler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "post fetched successfully", map[string]any{"post": post})
}

// HandleGetByID handles GET /api/v1/posts/id/{id} requests.
func (h *PostHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	post, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "post fetched successfully", map[string]any{"post": post})
}

// HandleCreate handles POST /api/v1/posts requests.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req model.CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusCreated, "post created successfully", map[string]any{"post": post})
}

// HandleUpdate handles PATCH /api/v1/posts/{id} requests.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, ok := postID(w, r)
	if !ok {
		return
	}

	var req model.UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.service.Update(r.Context(), id, userID, req)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "post updated successfully", map[string]any{"post": post})
}

// HandleDelete handles DELETE /api/v1/posts/{id} requests.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "post deleted successfully", nil)
}

// HandleMyPosts handles GET /api/v1/posts/my/posts requests.
func (h *PostHandler) HandleMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	posts, err := h.service.ListByAuthor(r.Context(), userID)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "posts fetched successfully", map[string]any{"posts": posts})
}

// HandleSeed handles POST /api/v1/posts/seed requests.
func (h *PostHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	created, err := h.seeder.Seed(r.Context(), userID)
	if err != nil {
		h.translate.Err(w, r, err)
		return
	}

	httpx.Success(w, http.StatusOK, "posts seeded successfully", map[string]any{"created": created})
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.Fail(w, http.StatusBadRequest, "invalid post id", nil)
		return 0, false
	}
	return id, true
}
