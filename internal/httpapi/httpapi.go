// Package httpapi exposes the task service as a JSON API.
//
// Routes:
//
//	GET    /todos[?q=]          list, optionally filtered by title
//	POST   /todos               create
//	GET    /todos/{id}          fetch one
//	PUT    /todos/{id}          update the fields present in the body
//	DELETE /todos/{id}          delete
//	POST   /todos/{id}/toggle   flip completion
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"todo/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Task is the JSON representation of a task. Absent title or description
// are encoded as null.
type Task struct {
	ID          string    `json:"id"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskInput is the body accepted by POST and PUT.
type TaskInput struct {
	Title       *string        `json:"title"`
	Description OptionalString `json:"description"`
	Completed   *bool          `json:"completed"`
}

// OptionalString tells an omitted key apart from an explicit null.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler. It only runs when the key is
// present, null included.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the API. Requests are handled one at a time so the
// id to view-index lookup cannot go stale between two service calls.
type Handler struct {
	svc service.Service
	log *log.Logger
	mu  sync.Mutex
}

// NewHandler returns the routed API for svc.
func NewHandler(svc service.Service, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	h := &Handler{svc: svc, log: logger}

	router := mux.NewRouter()
	router.HandleFunc("/todos", h.listTasks).Methods(http.MethodGet)
	router.HandleFunc("/todos", h.createTask).Methods(http.MethodPost)
	router.HandleFunc("/todos/{id}", h.getTask).Methods(http.MethodGet)
	router.HandleFunc("/todos/{id}", h.updateTask).Methods(http.MethodPut)
	router.HandleFunc("/todos/{id}", h.deleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/todos/{id}/toggle", h.toggleTask).Methods(http.MethodPost)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	router.Use(h.logRequests)
	return router
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Printf("%s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start))
	})
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	tasks, err := h.svc.LoadAll(r.Context())
	if err == nil {
		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			tasks, err = h.svc.Search(r.Context(), q)
		}
	}
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}

	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = toJSON(t)
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		respondWithError(w, http.StatusBadRequest, "title required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.svc.LoadAll(r.Context()); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	task, err := h.svc.Create(r.Context(), *in.Title, in.Description.Value)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	if in.Completed != nil && *in.Completed {
		index, found := h.svc.IndexOf(task.ID)
		if !found {
			h.respondWithServiceError(w, service.ErrNotFound)
			return
		}
		if task, err = h.svc.Toggle(r.Context(), index); err != nil {
			h.respondWithServiceError(w, err)
			return
		}
	}
	respondWithJSON(w, http.StatusCreated, toJSON(task))
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, task, ok := h.lookup(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, toJSON(task))
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		respondWithError(w, http.StatusBadRequest, "title must not be blank")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	index, current, ok := h.lookup(w, r)
	if !ok {
		return
	}

	title := current.TitleText()
	if in.Title != nil {
		title = *in.Title
	}
	desc := current.Description
	if in.Description.Set {
		desc = in.Description.Value
	}
	completed := current.IsCompleted
	if in.Completed != nil {
		completed = *in.Completed
	}

	task, err := h.svc.Update(r.Context(), index, title, desc, completed)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toJSON(task))
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	index, _, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), index); err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	index, _, ok := h.lookup(w, r)
	if !ok {
		return
	}
	task, err := h.svc.Toggle(r.Context(), index)
	if err != nil {
		h.respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toJSON(task))
}

// lookup resolves the {id} route variable to its index in a freshly loaded
// view. Callers hold mu.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (int, service.Task, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid task id")
		return 0, service.Task{}, false
	}

	if _, err := h.svc.LoadAll(r.Context()); err != nil {
		h.respondWithServiceError(w, err)
		return 0, service.Task{}, false
	}
	index, found := h.svc.IndexOf(id)
	if !found {
		respondWithError(w, http.StatusNotFound, "task not found")
		return 0, service.Task{}, false
	}
	task, err := h.svc.TaskAt(index)
	if err != nil {
		h.respondWithServiceError(w, err)
		return 0, service.Task{}, false
	}
	return index, task, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (TaskInput, bool) {
	var in TaskInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return TaskInput{}, false
	}
	return in, true
}

func toJSON(t service.Task) Task {
	return Task{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.IsCompleted,
		CreatedAt:   t.CreatedAt.UTC(),
	}
}

func (h *Handler) respondWithServiceError(w http.ResponseWriter, err error) {
	h.log.Printf("request failed: %v", err)
	switch {
	case errors.Is(err, service.ErrIndexOutOfRange), errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "task not found")
	case service.IsRemote(err):
		respondWithError(w, http.StatusBadGateway, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, errorResponse{Error: msg})
}

// respondWithJSON writes payload as JSON with the given status.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
