// Package api exposes the REST surface consumed by the mobile UI.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
	"github.com/prudhvinik1/mobilerp/internal/services"
)

type Handler struct {
	auth  *services.AuthService
	sync  *services.SyncService
	tasks *services.TaskService
	store *repositories.Store
}

func NewHandler(auth *services.AuthService, sync *services.SyncService, tasks *services.TaskService, store *repositories.Store) *Handler {
	return &Handler{auth: auth, sync: sync, tasks: tasks, store: store}
}

// RegisterRoutes wires the REST surface onto the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/auth/login", h.login)
	r.Post("/api/sync", h.syncAll)
	r.Get("/api/dashboard/{userID}", h.dashboard)

	r.Get("/api/tasks/{userID}", h.listTasks)
	r.Post("/api/tasks", h.createTask)
	r.Patch("/api/tasks/{id}", h.updateTask)
	r.Delete("/api/tasks/{id}", h.deleteTask)

	r.Get("/api/inventory/{userID}", h.resolveDataType(models.DataTypeInventoryItems))
	r.Get("/api/sales/{userID}", h.resolveDataType(models.DataTypeSalesOrders))
	r.Get("/api/purchases/{userID}", h.resolveDataType(models.DataTypePurchaseOrders))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, "Invalid login request", errs)
		return
	}

	resp, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials or service unavailable")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"user":      userView(resp.User),
		"token":     resp.Token,
		"expiresAt": resp.ExpiresAt,
	})
}

func (h *Handler) syncAll(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, "Invalid sync request", errs)
		return
	}
	userID := uuid.MustParse(req.UserID)

	result, err := h.sync.SyncAll(r.Context(), userID)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error during sync")
		return
	}

	payload := map[string]any{
		"success":  true,
		"message":  "Sync completed successfully",
		"lastSync": result.LastSync,
	}
	if result.IsOfflineSync {
		payload["message"] = "Using cached data. ERP server is unreachable."
		payload["isOfflineSync"] = true
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	user, err := h.store.Users.GetByID(r.Context(), userID)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error fetching dashboard")
		return
	}

	stats, err := h.store.Stats.GetByUserID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error fetching dashboard")
		return
	}
	activities, err := h.store.Activities.GetByUserID(r.Context(), userID, 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error fetching dashboard")
		return
	}
	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error fetching dashboard")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"user":       userView(user),
			"stats":      emptySlice(stats),
			"activities": emptySlice(activities),
			"tasks":      emptySlice(tasks),
		},
	})
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error fetching tasks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": emptySlice(tasks)})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, "Invalid task data", errs)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), services.CreateTaskInput{
		UserID:      uuid.MustParse(req.UserID),
		Title:       req.Title,
		DueDate:     req.DueDate,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error creating task")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": task})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeValidationError(w, "Invalid task data", errs)
		return
	}

	task, err := h.tasks.SetCompleted(r.Context(), id, *req.IsCompleted)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error updating task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": task})
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	err = h.tasks.DeleteTask(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error deleting task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Task deleted successfully"})
}

// resolveDataType builds a read handler for one tracked data type. Remote
// failures never surface here: the response degrades to the cached snapshot
// with isFresh=false.
func (h *Handler) resolveDataType(dataType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserID(w, r)
		if !ok {
			return
		}

		result, err := h.sync.Resolve(r.Context(), userID, dataType)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Server error fetching "+dataType)
			return
		}

		payload := map[string]any{
			"success": true,
			"data":    result.Data,
			"isFresh": result.IsFresh,
		}
		if result.LastSynced != nil {
			payload["lastSynced"] = result.LastSynced
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}

func userView(user *models.User) map[string]any {
	return map[string]any{
		"id":             user.ID,
		"username":       user.Username,
		"fullName":       user.FullName,
		"email":          user.Email,
		"avatarInitials": user.AvatarInitials,
		"lastSync":       user.LastSync,
	}
}

// emptySlice keeps empty collections rendering as [] instead of null.
func emptySlice[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
