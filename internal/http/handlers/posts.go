package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TreasureUzoma/lettera/internal/http/httperr"
	"github.com/TreasureUzoma/lettera/internal/http/middleware"
	"github.com/TreasureUzoma/lettera/internal/models"
)

type postPayload struct {
	ID        string `json:"id"`
	Subject   string `json:"subject"`
	Body      string `json:"body,omitempty"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func postFromModel(p *models.Post) postPayload {
	return postPayload{
		ID:        p.ID.String(),
		Subject:   p.Subject,
		Body:      p.Body,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type createPostRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type updatePostRequest struct {
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
	Status  *string `json:"status"`
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	var in createPostRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	post, err := h.Svc.CreatePost(r.Context(), identity.UserID, chi.URLParam(r, "project"), in.Subject, in.Body)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, postFromModel(post))
}

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	posts, err := h.Svc.ListPosts(r.Context(), identity.UserID, chi.URLParam(r, "project"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]postPayload, 0, len(posts))
	for i := range posts {
		out = append(out, postFromModel(&posts[i]))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "post"))
	if err != nil {
		badRequest(w, r)
		return
	}

	post, err := h.Svc.GetPost(r.Context(), identity.UserID, chi.URLParam(r, "project"), postID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postFromModel(post))
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "post"))
	if err != nil {
		badRequest(w, r)
		return
	}

	var in updatePostRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	var status *models.PostStatus
	if in.Status != nil {
		st := models.PostStatus(*in.Status)
		status = &st
	}

	post, err := h.Svc.UpdatePost(r.Context(), identity.UserID, chi.URLParam(r, "project"),
		postID, in.Subject, in.Body, status)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, postFromModel(post))
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	postID, err := uuid.Parse(chi.URLParam(r, "post"))
	if err != nil {
		badRequest(w, r)
		return
	}

	if err := h.Svc.DeletePost(r.Context(), identity.UserID, chi.URLParam(r, "project"), postID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
