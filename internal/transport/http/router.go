package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"sprint-quiz-service/internal/app"
	"sprint-quiz-service/internal/domain"
	"sprint-quiz-service/internal/metrics"
)

const (
	headerTeamID = "X-Team-ID"
	headerRole   = "X-Role"
)

// NewRouter mounts the submission, leaderboard and stream endpoints. Admin
// and registration routes are mounted when admin is non-nil.
func NewRouter(service *app.SubmissionService, admin *app.AdminService, m *metrics.Metrics, log *zap.Logger, allowedOrigins []string) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", headerTeamID, headerRole},
		MaxAge:         300,
	}))

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	h := &handlers{service: service, admin: admin, log: log}
	ws := NewWSHandler(service, log)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/api", func(api chi.Router) {
		api.Post("/team/activities/{activityID}/submit", h.submit)
		api.Get("/team/leaderboard", h.leaderboard(domain.RoleTeam))
		api.With(requireAdmin).Get("/admin/leaderboard", h.leaderboard(domain.RoleAdmin))
		if admin != nil {
			api.Post("/auth/team/register", h.registerTeam)
			api.Group(func(ar chi.Router) {
				ar.Use(requireAdmin)
				ar.Patch("/admin/activities/{activityID}", h.updateActivity)
				ar.Patch("/admin/events/{eventID}", h.updateEvent)
			})
		}
	})
	r.Get("/ws/leaderboard", ws.ServeWS)
	return r
}

type handlers struct {
	service *app.SubmissionService
	admin   *app.AdminService
	log     *zap.Logger
}

type submitRequest struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	teamID := r.Header.Get(headerTeamID)
	if teamID == "" {
		respondError(w, http.StatusUnauthorized, "missing team")
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Answers == nil {
		respondError(w, http.StatusBadRequest, "answers must be an object keyed by question id")
		return
	}

	result, err := h.service.Submit(r.Context(), teamID, chi.URLParam(r, "activityID"), req.Answers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"score":        result.Total,
		"perQuestion":  result.PerQuestion,
		"explanations": result.Explanations,
	})
}

func (h *handlers) leaderboard(viewer domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := r.URL.Query().Get("eventId")
		if eventID == "" {
			respondError(w, http.StatusBadRequest, "missing eventId")
			return
		}
		lb, err := h.service.Leaderboard(r.Context(), eventID, viewer)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, lb)
	}
}

type activityUpdateRequest struct {
	IsFrozen *bool `json:"isFrozen"`
}

func (h *handlers) updateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsFrozen == nil {
		respondError(w, http.StatusBadRequest, "isFrozen is required")
		return
	}
	activity, err := h.admin.SetActivityFrozen(r.Context(), chi.URLParam(r, "activityID"), *req.IsFrozen)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":       activity.ID,
		"eventId":  activity.EventID,
		"title":    activity.Title,
		"isFrozen": activity.IsFrozen,
	})
}

func (h *handlers) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid event update")
		return
	}
	event, err := h.admin.UpdateEvent(r.Context(), chi.URLParam(r, "eventID"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, event)
}

type registerRequest struct {
	DisplayName string `json:"displayName"`
}

func (h *handlers) registerTeam(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid registration")
		return
	}
	team, err := h.admin.RegisterTeam(r.Context(), req.DisplayName)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "team": team})
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrActivityNotFound), errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrActivityNotFrozen), errors.Is(err, domain.ErrEventClosed),
		errors.Is(err, domain.ErrInvalidVisibility), errors.Is(err, domain.ErrInvalidTeamName):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLeaderboardHidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.Role(r.Header.Get(headerRole)) != domain.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
