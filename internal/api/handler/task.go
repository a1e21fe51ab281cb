package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xela07ax/taskhub/internal/api/service"
	"github.com/xela07ax/taskhub/internal/domain"
	"go.uber.org/zap"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(s *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{service: s, logger: logger.Named("task-handler")}
}

// GET /api/v1/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	tasks, err := h.service.List(r.Context(), name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	task, err := h.service.Get(r.Context(), name, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	var in domain.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	task, err := h.service.Create(r.Context(), name, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// PUT /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	var in domain.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	task, err := h.service.Update(r.Context(), name, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Complete принимает в теле true или false.
// PUT /api/v1/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	name, ok := caller(w, r)
	if !ok {
		return
	}
	var done bool
	if !decodeJSON(w, r, &done) {
		return
	}
	task, err := h.service.Complete(r.Context(), name, chi.URLParam(r, "id"), done)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
