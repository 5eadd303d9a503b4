package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/caretrackhq/backend/internal/audit"
	"github.com/caretrackhq/backend/internal/chat"
	"github.com/caretrackhq/backend/internal/config"
	httpmiddleware "github.com/caretrackhq/backend/internal/http/middleware"
	"github.com/caretrackhq/backend/internal/notify"
	"github.com/caretrackhq/backend/internal/patient"
	"github.com/caretrackhq/backend/internal/rbac"
	"github.com/caretrackhq/backend/internal/report"
	"github.com/caretrackhq/backend/internal/service"
	"github.com/caretrackhq/backend/internal/staff"
	"github.com/caretrackhq/backend/internal/task"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	policy        rbac.Policy
	authService   *service.AuthService
	staff         *staff.Service
	patients      *patient.Service
	tasks         *task.Service
	reports       *report.Service
	chat          *chat.Service
	notifier      *notify.Service
	audit         audit.Recorder
	auditLog      *audit.Repository
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter wires repositories, services and routes.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, messenger notify.Messenger) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	policy, err := rbac.FromName(cfg.AccessPolicy)
	if err != nil {
		return nil, err
	}

	staffRepo := staff.NewRepository(pool)
	staffService := staff.NewService(staffRepo)
	patientRepo := patient.NewRepository(pool)
	patientService := patient.NewService(patientRepo)
	taskRepo := task.NewRepository(pool)
	taskService := task.NewService(taskRepo)
	reportRepo := report.NewRepository(pool)
	reportService := report.NewService(reportRepo)
	chatService := chat.NewService(redisClient, cfg.ChatHistoryLimit)
	notifyService := notify.NewService(staffRepo, patientRepo, taskRepo, messenger)
	auditRepo := audit.NewRepository(pool)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		policy:        policy,
		authService:   authService,
		staff:         staffService,
		patients:      patientService,
		tasks:         taskService,
		reports:       reportService,
		chat:          chatService,
		notifier:      notifyService,
		audit:         auditRepo,
		auditLog:      auditRepo,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Handle("/metrics", promhttp.Handler())

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		private.Put("/me/token", h.SaveDeviceToken)
		private.Delete("/me/token", h.ClearDeviceToken)

		private.Get("/staff", h.ListStaff)

		private.Route("/patients", func(p chi.Router) {
			p.Get("/", h.ListPatients)
			p.Post("/", h.AdmitPatient)
			p.Get("/{id}", h.GetPatient)
			p.Patch("/{id}", h.UpdatePatient)
			p.Post("/{id}/discharge", h.DischargePatient)
			p.Get("/{id}/diagnosis", h.ListDiagnosis)
			p.Post("/{id}/diagnosis", h.AddDiagnosis)
			p.Get("/{id}/comments", h.ListPatientComments)
			p.Post("/{id}/comments", h.AddPatientComment)
			p.Get("/{id}/reports", h.ListPatientReports)
		})

		private.Route("/tasks", func(t chi.Router) {
			t.Get("/", h.ListTasks)
			t.Post("/", h.CreateTask)
			t.Get("/{id}", h.GetTask)
			t.Patch("/{id}", h.UpdateTask)
			t.Delete("/{id}", h.DeleteTask)
			t.Get("/{id}/comments", h.ListTaskComments)
			t.Post("/{id}/comments", h.AddTaskComment)
		})

		private.Route("/reports", func(rep chi.Router) {
			rep.Post("/", h.SubmitReport)
			rep.Get("/{id}", h.GetReport)
			rep.Put("/{id}", h.AmendReport)
		})

		private.Route("/chat/{channel}", func(c chi.Router) {
			c.Get("/", h.ChatHistory)
			c.Post("/", h.PostChatMessage)
		})

		private.Post("/notify/push", h.SendPush)

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)
			admin.Post("/staff", h.CreateStaff)
			admin.Patch("/staff/{uid}", h.UpdateStaff)
			admin.Get("/admin/audit", h.ListAuditLog)
		})
	})

	return r, nil
}

// Health responds with a simple status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the Postgres and Redis connections.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependencies unavailable", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Login authenticates staff by email and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Password) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email and password are required", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Refresh rotates the session using the refresh cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := getRefreshFromRequest(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "missing refresh token", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalid) || errors.Is(err, service.ErrAccountDisabled) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "invalid refresh token", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "session renewal failed", nil)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Logout revokes the current refresh token and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := getRefreshFromRequest(r); err == nil {
		_ = h.authService.Logout(r.Context(), token)
	}

	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated staff profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject := httpmiddleware.GetSubject(r.Context())

	profile, roles, err := h.authService.GetMe(r.Context(), subject)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "unknown subject", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load profile", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":  profile,
		"roles": roles,
	})
}

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, service.ErrAccountDisabled):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "authentication failed", nil)
	}
}

func (h *Handler) writeLoginSuccess(w http.ResponseWriter, result *service.LoginResult) {
	h.setRefreshCookie(w, result.RefreshToken, result.RefreshExpiry)

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"user":         result.Profile,
	})
}

func subjectOf(r *http.Request) string {
	return httpmiddleware.GetSubject(r.Context())
}

// subjectProfile loads the caller's fresh profile. Access checks always
// run against stored state, not token claims.
func (h *Handler) subjectProfile(r *http.Request) (staff.Profile, error) {
	subject := httpmiddleware.GetSubject(r.Context())
	if strings.TrimSpace(subject) == "" {
		return staff.Profile{}, errors.New("missing subject")
	}
	return h.staff.Get(r.Context(), subject)
}

const refreshCookieName = "staff_refresh"

func getRefreshFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errors.New("missing refresh token")
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
