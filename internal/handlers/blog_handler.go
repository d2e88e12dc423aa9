package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quillside/backend/internal/middleware"
	"github.com/quillside/backend/internal/models"
	"github.com/quillside/backend/internal/services"
)

type BlogHandler struct {
	blogs    *services.BlogService
	accounts *services.AccountService
}

func NewBlogHandler(blogs *services.BlogService, accounts *services.AccountService) *BlogHandler {
	return &BlogHandler{blogs: blogs, accounts: accounts}
}

// principalUser resolves the authenticated principal to its full user record.
// Creation paths need the live status for denormalized stamping, not the
// snapshot baked into the token.
func (h *BlogHandler) principalUser(r *http.Request) (*models.User, error) {
	p, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		return nil, services.ErrForbidden
	}
	return h.accounts.GetByID(r.Context(), p.UserID)
}

func (h *BlogHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	user, err := h.principalUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if user.AccountType != models.AccountBlogger && user.AccountType != models.AccountAdmin {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Only blogger accounts can create blogs"))
		return
	}
	if user.Status != models.StatusGood {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Account is not in good standing"))
		return
	}

	var req models.CreateBlogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	blog, err := h.blogs.CreateBlog(r.Context(), user, &req)
	if err != nil {
		log.Printf("[CreateBlog] error: %v", err)
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Failed to create blog"))
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(blog))
}

func (h *BlogHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())

	var req models.UpdateBlogRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	blog, err := h.blogs.UpdateBlog(r.Context(), p.UserID, chi.URLParam(r, "blogId"), &req)
	if err != nil {
		h.writeBlogError(w, err, "UpdateBlog")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(blog))
}

func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	if err := h.blogs.DeleteBlog(r.Context(), p.UserID, chi.URLParam(r, "blogId")); err != nil {
		h.writeBlogError(w, err, "DeleteBlog")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogHandler) ListOwnBlogs(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	blogs, err := h.blogs.ListOwnBlogs(r.Context(), p.UserID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list blogs"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(blogs))
}

// ListBlogs is the public blog directory; private blogs are excluded.
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.ListBlogs(r.Context(), models.BlogFilter{})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list blogs"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(blogs))
}

// GetBlog is the public read by blog name.
func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.GetBlogByName(r.Context(), chi.URLParam(r, "blogName"))
	if err != nil {
		h.writeBlogError(w, err, "GetBlog")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(blog))
}

// ListBlogPosts is the public post listing for a blog.
func (h *BlogHandler) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.blogs.ListBlogPosts(r.Context(), chi.URLParam(r, "blogName"))
	if err != nil {
		h.writeBlogError(w, err, "ListBlogPosts")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(posts))
}

func (h *BlogHandler) ListOwnPosts(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	posts, err := h.blogs.ListOwnPosts(r.Context(), p.UserID, chi.URLParam(r, "blogId"))
	if err != nil {
		h.writeBlogError(w, err, "ListOwnPosts")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(posts))
}

func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := h.principalUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if user.Status == models.StatusBanned || user.Status == models.StatusRestricted {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Account is not in good standing"))
		return
	}

	var req models.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	post, err := h.blogs.CreatePost(r.Context(), user, chi.URLParam(r, "blogId"), &req)
	if err != nil {
		h.writeBlogError(w, err, "CreatePost")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(post))
}

func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	if err := h.blogs.DeletePost(r.Context(), p.UserID, chi.URLParam(r, "postId")); err != nil {
		h.writeBlogError(w, err, "DeletePost")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecentPosts feeds the public landing page.
func (h *BlogHandler) RecentPosts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 50 {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	posts, err := h.blogs.RecentPosts(r.Context(), limit)
	if err != nil {
		log.Printf("[RecentPosts] error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list posts"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(posts))
}

func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.blogs.GetPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.writeBlogError(w, err, "GetPost")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(post))
}

func (h *BlogHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	user, err := h.principalUser(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	if user.Status == models.StatusBanned || user.Status == models.StatusRestricted {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Account is not in good standing"))
		return
	}

	var req models.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	comment, err := h.blogs.CreateComment(r.Context(), user, chi.URLParam(r, "postId"), &req)
	if err != nil {
		h.writeBlogError(w, err, "CreateComment")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(comment))
}

func (h *BlogHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.GetPrincipal(r.Context())
	if err := h.blogs.DeleteComment(r.Context(), p.UserID, chi.URLParam(r, "commentId")); err != nil {
		h.writeBlogError(w, err, "DeleteComment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BlogHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.blogs.ListComments(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list comments"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(comments))
}

func (h *BlogHandler) writeBlogError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, services.ErrBlogNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Blog not found"))
	case errors.Is(err, services.ErrPostNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Post not found"))
	case errors.Is(err, services.ErrCommentNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Comment not found"))
	case errors.Is(err, services.ErrForbidden):
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Forbidden"))
	default:
		log.Printf("[%s] error: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Request failed"))
	}
}
