package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fiffu/guardwatch/config"
	"github.com/fiffu/guardwatch/lib"
	"github.com/fiffu/guardwatch/lib/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service, sessions *SessionStore) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc, sessions)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go srv.ListenAndServe()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service, sessions *SessionStore) http.Handler {
	ctrl := &controller{log, svc, sessions}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if creds := cfg.GetCreds(); len(creds) > 0 {
			r.Use(middleware.BasicAuth("guardwatch", creds))
		} else {
			log.Sugar().Info("Auth is disabled since no credentials are defined")
		}

		r.Route("/alerts", func(r chi.Router) {
			r.Post("/trigger", ctrl.triggerAlert)
			r.Get("/", ctrl.listAlerts)
			r.Delete("/local", ctrl.clearLocalAlerts)
		})

		r.Route("/guardians", func(r chi.Router) {
			r.Post("/", ctrl.enrollGuardian)
			r.Get("/", ctrl.listGuardians)
			r.Delete("/{guardian_id}", ctrl.removeGuardian)
		})

		r.Put("/session", ctrl.saveSession)
		r.Delete("/session", ctrl.clearSession)
		r.Post("/profiles", ctrl.upsertProfile)
		r.Post("/token", ctrl.registerToken)
		r.Get("/settings", ctrl.getSettings)
		r.Put("/settings", ctrl.saveSettings)
	})

	return r
}

type controller struct {
	log      *zap.Logger
	svc      *lib.Service
	sessions *SessionStore
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	if b, err := json.Marshal(body); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		ctrl.log.Sugar().Error("Request failed", "error", err)
		return
	} else {
		w.WriteHeader(status)
		if b != nil {
			w.Write(b)
		}
	}
}

func (ctrl *controller) identity(w http.ResponseWriter, r *http.Request) *lib.Identity {
	identity, err := ctrl.sessions.CurrentIdentity(r.Context())
	if err != nil {
		ctrl.reject(w, http.StatusUnauthorized, lib.ErrNotAuthenticated)
		return nil
	}
	return identity
}

func (ctrl *controller) triggerAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	outcome, err := ctrl.svc.TriggerAlert(ctx, "manual")
	switch {
	case err == nil:
		ctrl.resolve(w, http.StatusOK, outcome)
	case errors.Is(err, lib.ErrNotAuthenticated):
		ctrl.reject(w, http.StatusUnauthorized, err)
	case errors.Is(err, lib.ErrNoGuardians):
		ctrl.reject(w, http.StatusConflict, err)
	case errors.Is(err, lib.ErrAllDispatchesFailed):
		ctrl.reject(w, http.StatusBadGateway, err)
	default:
		ctrl.reject(w, http.StatusInternalServerError, err)
	}
}

func (ctrl *controller) listAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	alerts, err := ctrl.svc.ListAll(ctx, me.ID)
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, FromMany[models.Alert, AlertView](alerts))
}

func (ctrl *controller) clearLocalAlerts(w http.ResponseWriter, r *http.Request) {
	if me := ctrl.identity(w, r); me == nil {
		return
	}

	if err := ctrl.svc.ClearLocal(); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"cleared": true})
}

func (ctrl *controller) enrollGuardian(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	owner, err := ctrl.svc.ProfileByID(ctx, me.ID)
	if err != nil {
		ctrl.reject(w, http.StatusConflict, errors.New("profile must be created before enrolling guardians"))
		return
	}

	guardian := &models.Guardian{
		Name:         r.FormValue("name"),
		Phone:        r.FormValue("phone"),
		Email:        r.FormValue("email"),
		Relationship: r.FormValue("relationship"),
	}
	if guardian.Name == "" {
		ctrl.reject(w, http.StatusBadRequest, errors.New("Name is required"))
		return
	}

	guardian, err = ctrl.svc.EnrollGuardian(ctx, owner, guardian)
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusCreated, GuardianView{}.From(*guardian))
}

func (ctrl *controller) listGuardians(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	links, err := ctrl.svc.ListGuardians(ctx, me.ID)
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, FromMany[models.Guardian, GuardianView](links))
}

func (ctrl *controller) removeGuardian(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	err := ctrl.svc.RemoveGuardian(ctx, me.ID, chi.URLParam(r, "guardian_id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctrl.reject(w, http.StatusNotFound, err)
		return
	} else if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"removed": true})
}

func (ctrl *controller) saveSession(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	email := r.FormValue("email")
	if id == "" || email == "" {
		ctrl.reject(w, http.StatusBadRequest, errors.New("id and email are required"))
		return
	}

	if err := ctrl.sessions.Save(&lib.Identity{ID: id, Email: email}); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"signed_in": email})
}

func (ctrl *controller) clearSession(w http.ResponseWriter, r *http.Request) {
	if err := ctrl.sessions.Clear(); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"signed_in": nil})
}

func (ctrl *controller) upsertProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	profile := &models.UserProfile{
		ID:          me.ID,
		Email:       me.Email,
		FullName:    r.FormValue("full_name"),
		PhoneNumber: r.FormValue("phone_number"),
	}
	profile, err := ctrl.svc.UpsertProfile(ctx, profile)
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, ProfileView{}.From(*profile))
}

func (ctrl *controller) registerToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	token := r.FormValue("token")
	if token == "" {
		ctrl.reject(w, http.StatusBadRequest, errors.New("Token is required"))
		return
	}

	err := ctrl.svc.RegisterToken(ctx, me.ID, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctrl.reject(w, http.StatusNotFound, err)
		return
	} else if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, map[string]any{"registered": true})
}

func (ctrl *controller) getSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	settings, err := ctrl.svc.GetSettings(ctx, me.ID)
	if err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	if settings == nil {
		ctrl.reject(w, http.StatusNotFound, nil)
		return
	}
	ctrl.resolve(w, http.StatusOK, SettingsView{}.From(*settings))
}

func (ctrl *controller) saveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	me := ctrl.identity(w, r)
	if me == nil {
		return
	}

	req := SettingsRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	settings := &models.UserSettings{
		VoiceDetectionEnabled: req.VoiceDetectionEnabled,
		VoiceSensitivity:      req.VoiceSensitivity,
		WakeWord:              req.WakeWord,
		AccessKey:             req.AccessKey,
		AutoLocationSharing:   req.AutoLocationSharing,
	}
	if err := ctrl.svc.SaveSettings(ctx, me.ID, settings); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		return
	}
	ctrl.resolve(w, http.StatusOK, SettingsView{}.From(*settings))
}
