package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TheOgre365/equip-track/internal/application"
	"github.com/TheOgre365/equip-track/internal/domain"
	"github.com/TheOgre365/equip-track/internal/ui"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const workspaceCookieName = "et_workspace"

type Handler struct {
	service    *application.InventoryService
	workspaces *application.Workspaces
	logger     *slog.Logger
}

func NewRouter(service *application.InventoryService, workspaces *application.Workspaces, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{service: service, workspaces: workspaces, logger: logger}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/assets", h.handleAPIListAssets)
		api.Post("/assets", h.handleAPISaveAsset)
		api.Get("/assets/{id}", h.handleAPIGetAsset)
		api.Put("/assets/{id}", h.handleAPISaveAsset)
		api.Delete("/assets/{id}", h.handleAPIDeleteAsset)
		api.Post("/assets/{id}/checkin", h.handleAPICheckIn)
		api.Post("/assets/{id}/maintenance", h.handleAPIMaintenance)
		api.Get("/assets/{id}/history", h.handleAPIHistory)

		api.Get("/employees", h.handleAPIListEmployees)
		api.Post("/employees", h.handleAPISaveEmployee)
		api.Put("/employees/{id}", h.handleAPISaveEmployee)
		api.Delete("/employees/{id}", h.handleAPIDeleteEmployee)

		api.Get("/directory", h.handleAPIDirectory)
		api.Get("/summary", h.handleAPISummary)
		api.Get("/catalog", h.handleAPICatalog)
	})

	r.Get("/", h.handleIndex)
	r.Route("/ui", func(gui chi.Router) {
		gui.Post("/nav/{view}", h.handleNavigate)
		gui.Post("/filter", h.handleFilter)
		gui.Post("/groups/{type}", h.handleToggleGroup)
		gui.Post("/modal/close", h.handleCloseModal)

		gui.Post("/assets/new", h.handleNewAsset)
		gui.Post("/assets/form", h.handleAssetForm)
		gui.Post("/assets/save", h.handleSaveAsset)
		gui.Post("/assets/{id}/edit", h.handleEditAsset)
		gui.Post("/assets/{id}/delete", h.handleDeleteAsset)
		gui.Post("/assets/{id}/checkin", h.handleCheckIn)
		gui.Post("/assets/{id}/maintenance", h.handleMaintenance)
		gui.Post("/assets/{id}/history", h.handleHistory)

		gui.Post("/employees/new", h.handleNewEmployee)
		gui.Post("/employees/save", h.handleSaveEmployee)
		gui.Post("/employees/{id}/edit", h.handleEditEmployee)
		gui.Post("/employees/{id}/delete", h.handleDeleteEmployee)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("http request",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)),
		)
	})
}

// workspace returns the caller's workspace, issuing a new cookie when the
// request carries none.
func (h *Handler) workspace(w http.ResponseWriter, r *http.Request) *application.Workspace {
	if c, err := r.Cookie(workspaceCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return h.workspaces.Get(c.Value)
		}
	}
	key := uuid.NewString()
	setWorkspaceCookie(w, key)
	return h.workspaces.Get(key)
}

func setWorkspaceCookie(w http.ResponseWriter, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     workspaceCookieName,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	})
}

// statusFor maps store and input errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func parseID(r *http.Request) (uint, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validationf("invalid id %q", raw)
	}
	return uint(id), nil
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]any{"error": err.Error()})
}

func renderHTMLFragments(ctx context.Context, w http.ResponseWriter, status int, fragments ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	for _, fragment := range fragments {
		if fragment == nil {
			continue
		}
		_ = fragment.Render(ctx, w)
	}
}

func (h *Handler) renderFlash(ctx context.Context, w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if status >= 400 {
		_ = ui.Flash(message, "error").Render(ctx, w)
		return
	}
	_ = ui.Flash(message, "info").Render(ctx, w)
}

func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", slog.Any("err", err))
	}
	h.renderFlash(ctx, w, status, err.Error())
}
