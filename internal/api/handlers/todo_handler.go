package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rmarbach/todoboard-be/internal/auth"
	"github.com/rmarbach/todoboard-be/internal/models"
	"github.com/rmarbach/todoboard-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TodoHandler handles HTTP requests for todo management.
type TodoHandler struct {
	service services.TodoServiceProvider
	users   services.UserServiceProvider
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(service services.TodoServiceProvider, users services.UserServiceProvider) *TodoHandler {
	return &TodoHandler{service: service, users: users}
}

// owner resolves the authenticated user from the verified token claims. The
// owner identity always comes from here, never from client input.
func (h *TodoHandler) owner(r *http.Request) (models.User, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return models.User{}, services.ErrNotFound
	}
	user, err := h.users.GetByUsername(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			log.Warn().Str("username", claims.Subject).Msg("Token subject not resolvable")
		}
		return models.User{}, err
	}
	return user, nil
}

// writeOwnerError maps owner-resolution failures. A subject that no longer
// exists is an authentication problem; anything else (store outage included)
// keeps its service mapping.
func writeOwnerError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrNotFound) {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeServiceError(w, err)
}

// List returns one page of the caller's todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := h.owner(r)
	if err != nil {
		writeOwnerError(w, err)
		return
	}

	q := r.URL.Query()
	params := models.ListParams{
		Page:     intParam(q.Get("page"), 1),
		Size:     intParam(q.Get("size"), 10),
		SortBy:   q.Get("sort_by"),
		SortDesc: true,
	}
	if params.SortBy == "" {
		params.SortBy = "created_at"
	}
	if v := q.Get("sort_desc"); v != "" {
		desc, err := strconv.ParseBool(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid sort_desc value")
			return
		}
		params.SortDesc = desc
	}
	if v := q.Get("status"); v != "" {
		status := models.Status(v)
		if !status.Valid() {
			writeDetail(w, http.StatusBadRequest, "Invalid status value")
			return
		}
		params.Status = &status
	}
	params.Search = q.Get("search")
	if v := q.Get("due_date_start"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid due_date_start value")
			return
		}
		params.DueStart = &t
	}
	if v := q.Get("due_date_end"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid due_date_end value")
			return
		}
		params.DueEnd = &t
	}

	page, err := h.service.List(r.Context(), user.ID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create adds a new todo owned by the caller.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, err := h.owner(r)
	if err != nil {
		writeOwnerError(w, err)
		return
	}

	var payload models.TodoCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.service.Create(r.Context(), user.ID, payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Update applies a partial update to one of the caller's todos.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, err := h.owner(r)
	if err != nil {
		writeOwnerError(w, err)
		return
	}

	var payload models.TodoUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	todo, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), user.ID, payload)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Todo not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// Delete removes one of the caller's todos.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.owner(r)
	if err != nil {
		writeOwnerError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Todo not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted"})
}

// StatusStats returns the caller's per-status todo counts.
func (h *TodoHandler) StatusStats(w http.ResponseWriter, r *http.Request) {
	user, err := h.owner(r)
	if err != nil {
		writeOwnerError(w, err)
		return
	}

	stats, err := h.service.StatusStats(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// WorkloadStats returns the caller's per-day due-date workload.
func (h *TodoHandler) WorkloadStats(w http.ResponseWriter, r *http.Request) {
	user, err := h.owner(r)
	if err != nil {
		writeOwnerError(w, err)
		return
	}

	entries, err := h.service.WorkloadStats(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func intParam(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
