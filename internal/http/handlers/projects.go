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

type projectPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
	Role        string `json:"role,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func projectFromModel(p *models.Project, role models.ProjectRole) projectPayload {
	return projectPayload{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		IsActive:    p.IsActive,
		Role:        string(role),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type memberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type memberRolePatch struct {
	Role string `json:"role"`
}

type memberPayload struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	var in createProjectRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	project, err := h.Svc.CreateProject(r.Context(), identity.UserID, in.Name, in.Slug, in.Description)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, projectFromModel(project, models.RoleOwner))
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	projects, err := h.Svc.ListProjects(r.Context(), identity.UserID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]projectPayload, 0, len(projects))
	for i := range projects {
		out = append(out, projectFromModel(&projects[i], ""))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	project, role, err := h.Svc.GetProject(r.Context(), identity.UserID, chi.URLParam(r, "project"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectFromModel(project, role))
}

func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	var in updateProjectRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	project, err := h.Svc.UpdateProject(r.Context(), identity.UserID, chi.URLParam(r, "project"),
		in.Name, in.Description, in.IsActive)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, projectFromModel(project, ""))
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	if err := h.Svc.DeleteProject(r.Context(), identity.UserID, chi.URLParam(r, "project")); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AddMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	var in memberRequest
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	m, err := h.Svc.AddMember(r.Context(), identity.UserID, chi.URLParam(r, "project"),
		in.Email, models.ProjectRole(in.Role))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, memberPayload{
		UserID:   m.UserID.String(),
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	members, err := h.Svc.ListMembers(r.Context(), identity.UserID, chi.URLParam(r, "project"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]memberPayload, 0, len(members))
	for _, m := range members {
		out = append(out, memberPayload{
			UserID:   m.UserID.String(),
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	memberID, err := uuid.Parse(chi.URLParam(r, "member"))
	if err != nil {
		badRequest(w, r)
		return
	}

	var in memberRolePatch
	if err := decodeStrict(r, &in); err != nil {
		badRequest(w, r)
		return
	}

	err = h.Svc.UpdateMemberRole(r.Context(), identity.UserID, chi.URLParam(r, "project"),
		memberID, models.ProjectRole(in.Role))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type apiKeyPayload struct {
	ID         string `json:"id"`
	PublicKey  string `json:"public_key"`
	SecretKey  string `json:"secret_key,omitempty"`
	LastUsedAt string `json:"last_used_at,omitempty"`
	RevokedAt  string `json:"revoked_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func apiKeyFromModel(k *models.ProjectAPIKey, secret string) apiKeyPayload {
	out := apiKeyPayload{
		ID:        k.ID.String(),
		PublicKey: k.PublicKey,
		SecretKey: secret,
		CreatedAt: k.CreatedAt.UTC().Format(time.RFC3339),
	}
	if k.LastUsedAt != nil {
		out.LastUsedAt = k.LastUsedAt.UTC().Format(time.RFC3339)
	}
	if k.RevokedAt != nil {
		out.RevokedAt = k.RevokedAt.UTC().Format(time.RFC3339)
	}

	return out
}

// CreateAPIKey выпускает пару ключей. Секрет присутствует в ответе один
// единственный раз; дальше он существует только шифртекстом в БД.
func (h *Handlers) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	key, secret, err := h.Svc.CreateAPIKey(r.Context(), identity.UserID, chi.URLParam(r, "project"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, apiKeyFromModel(key, secret))
}

func (h *Handlers) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	keys, err := h.Svc.ListAPIKeys(r.Context(), identity.UserID, chi.URLParam(r, "project"))
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	out := make([]apiKeyPayload, 0, len(keys))
	for i := range keys {
		out = append(out, apiKeyFromModel(&keys[i], ""))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httperr.WriteUnauthorized(w, r)
		return
	}

	keyID, err := uuid.Parse(chi.URLParam(r, "key"))
	if err != nil {
		badRequest(w, r)
		return
	}

	if err := h.Svc.RevokeAPIKey(r.Context(), identity.UserID, chi.URLParam(r, "project"), keyID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
