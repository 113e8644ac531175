package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/florax/florax-dashboard/internal/pkg/application/auth"
	"github.com/florax/florax-dashboard/internal/pkg/application/dashboard"
	"github.com/florax/florax-dashboard/internal/pkg/application/irrigation"
	"github.com/florax/florax-dashboard/internal/pkg/application/views"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("florax-dashboard/api")

const LoginPath string = "/login"

// Sections gives access to the dashboard sections by name.
type Sections interface {
	View(name string) (views.View, error)
}

type AlertResolver interface {
	Resolve(ctx context.Context, alertID int64) error
	Snapshot() any
}

type TokenChecker interface {
	Authenticated() bool
}

func RegisterHandlers(ctx context.Context, router *chi.Mux, sections Sections, alerts AlertResolver, authSvc auth.Service, tokens TokenChecker) *chi.Mux {
	log := logging.GetLoggerFromContext(ctx)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Get(LoginPath, loginHintHandler(tokens))
	router.Post(LoginPath, loginHandler(log, authSvc))
	router.Post("/logout", logoutHandler(log, authSvc))

	router.Group(func(r chi.Router) {
		r.Use(RequireSession(tokens))

		r.Get("/sections/{name}", getSectionHandler(log, sections))
		r.Post("/sections/{name}/refresh", refreshSectionHandler(log, sections))
		r.Post("/alerts/{alertID}/resolve", resolveAlertHandler(log, alerts))
	})

	return router
}

// RequireSession answers 303 See Other towards the login endpoint when no
// session token is held.
func RequireSession(tokens TokenChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokens.Authenticated() {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loginHintHandler(tokens TokenChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tokens.Authenticated() {
			writeJSON(w, http.StatusOK, ApiResponse{Message: "signed in"})
			return
		}
		writeJSON(w, http.StatusUnauthorized, ApiResponse{Message: "not signed in, POST credentials to /login or run `florax login`"})
	}
}

func loginHandler(log zerolog.Logger, svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "login")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		requestLogger := log.With().Str("traceID", span.SpanContext().TraceID().String()).Logger()
		ctx = logging.NewContextWithLogger(ctx, requestLogger)

		creds := types.Credentials{}
		err = json.NewDecoder(r.Body).Decode(&creds)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to decode credentials")
			writeJSON(w, http.StatusBadRequest, ApiResponse{Message: "invalid request body"})
			return
		}

		resp, err := svc.Login(ctx, creds)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, auth.ErrValidation) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, ApiResponse{Message: messageOf(err)})
			return
		}

		writeJSON(w, http.StatusOK, ApiResponse{Data: map[string]string{
			"name":  resp.Name,
			"email": resp.Email,
			"role":  resp.Role,
		}})
	}
}

func logoutHandler(log zerolog.Logger, svc auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Logout(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("logout failed")
			writeJSON(w, http.StatusInternalServerError, ApiResponse{Message: messageOf(err)})
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func getSectionHandler(log zerolog.Logger, sections Sections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		name := chi.URLParam(r, "name")

		ctx, span := tracer.Start(r.Context(), "get-section")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		requestLogger := log.With().Str("section", name).Str("traceID", span.SpanContext().TraceID().String()).Logger()
		ctx = logging.NewContextWithLogger(ctx, requestLogger)

		view, err := sections.View(name)
		if err != nil {
			requestLogger.Debug().Msg("section not found")
			writeJSON(w, http.StatusNotFound, ApiResponse{Message: err.Error()})
			return
		}

		if err = applyQuery(view, r); err != nil {
			writeJSON(w, http.StatusBadRequest, ApiResponse{Message: err.Error()})
			return
		}

		if mountErr := view.Mount(ctx); mountErr != nil {
			requestLogger.Debug().Err(mountErr).Msg("section loaded with errors")
		}

		writeSection(w, view)
	}
}

func refreshSectionHandler(log zerolog.Logger, sections Sections) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		name := chi.URLParam(r, "name")

		ctx, span := tracer.Start(r.Context(), "refresh-section")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()
		requestLogger := log.With().Str("section", name).Str("traceID", span.SpanContext().TraceID().String()).Logger()
		ctx = logging.NewContextWithLogger(ctx, requestLogger)

		view, err := sections.View(name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, ApiResponse{Message: err.Error()})
			return
		}

		if err = applyQuery(view, r); err != nil {
			writeJSON(w, http.StatusBadRequest, ApiResponse{Message: err.Error()})
			return
		}

		if refreshErr := view.Refresh(ctx); refreshErr != nil {
			requestLogger.Debug().Err(refreshErr).Msg("section refreshed with errors")
		}

		writeSection(w, view)
	}
}

func resolveAlertHandler(log zerolog.Logger, alerts AlertResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span := tracer.Start(r.Context(), "resolve-alert")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		alertID, err := strconv.ParseInt(chi.URLParam(r, "alertID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ApiResponse{Message: "alert id must be a number"})
			return
		}

		requestLogger := log.With().Int64("alert_id", alertID).Str("traceID", span.SpanContext().TraceID().String()).Logger()
		ctx = logging.NewContextWithLogger(ctx, requestLogger)

		err = alerts.Resolve(ctx, alertID)
		if errors.Is(err, views.ErrResolveInFlight) {
			writeJSON(w, http.StatusConflict, ApiResponse{Message: err.Error()})
			return
		}
		if err != nil {
			requestLogger.Error().Err(err).Msg("resolve failed")
			writeJSON(w, http.StatusBadGateway, ApiResponse{Message: messageOf(err), Data: alerts.Snapshot()})
			return
		}

		writeJSON(w, http.StatusOK, ApiResponse{Meta: &meta{Section: views.AlertsSection}, Data: alerts.Snapshot()})
	}
}

// applyQuery copies the view options found in the query string onto view.
func applyQuery(view views.View, r *http.Request) error {
	q := r.URL.Query()

	switch v := view.(type) {
	case *views.IrrigationView:
		if p := q.Get("period"); p != "" {
			period, err := irrigation.ParsePeriod(p)
			if err != nil {
				return err
			}
			v.SetPeriod(period)
		}
		if q.Has("zone") || q.Has("trigger") {
			trigger := q.Get("trigger")
			if strings.EqualFold(trigger, irrigation.AllTriggers) {
				trigger = irrigation.AllTriggers
			}
			v.SetFilter(irrigation.Criteria{Zone: q.Get("zone"), Trigger: trigger})
		}
	case *views.SensorsView:
		if f := q.Get("faulty"); f != "" {
			show, err := strconv.ParseBool(f)
			if err != nil {
				return errors.New("faulty must be true or false")
			}
			v.ShowFaulty(show)
		}
	}

	return nil
}

func writeSection(w http.ResponseWriter, view views.View) {
	writeJSON(w, http.StatusOK, ApiResponse{
		Meta: &meta{Section: view.Name()},
		Data: view.Snapshot(),
	})
}

func messageOf(err error) string {
	var svcErr *dashboard.Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return err.Error()
}
