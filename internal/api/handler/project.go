package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/taskhub/internal/api/service"
	"github.com/xela07ax/taskhub/internal/domain"
	"go.uber.org/zap"
)

// ProjectHandler работает только с проектами вызывающего
type ProjectHandler struct {
	service *service.ProjectService
	logger  *zap.Logger
}

func NewProjectHandler(s *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{service: s, logger: logger.Named("project-handler")}
}

// GET /api/v1/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	projects, err := h.service.List(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// GET /api/v1/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	project, err := h.service.Get(r.Context(), name, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// POST /api/v1/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	var in domain.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	project, err := h.service.Create(r.Context(), name, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// PUT /api/v1/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	var in domain.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	project, err := h.service.Update(r.Context(), name, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// Delete отвязывает задачи от проекта и удаляет его.
// DELETE /api/v1/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), name, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
