package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rentalempire/internal/game"
	"rentalempire/internal/notify"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Server struct {
	log    *slog.Logger
	engine *game.Engine
	inbox  *notify.Inbox
	mux    *chi.Mux
}

type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

func New(logger *slog.Logger, engine *game.Engine, inbox *notify.Inbox) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:    logger,
		engine: engine,
		inbox:  inbox,
		mux:    chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "running": s.engine.Running()})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/ledger", s.handleLedger)
		r.Get("/assets", s.handleAssets)
		r.Get("/upgrades", s.handleUpgrades)
		r.Get("/market", s.handleMarket)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/tiers", s.handleTiers)
		r.Get("/notifications", s.handleNotifications)

		r.Post("/assets/{id}/buy", s.handleBuyAsset)
		r.Post("/assets/{id}/sell", s.handleSellAsset)
		r.Post("/assets/{id}/level", s.handleLevelAsset)
		r.Post("/upgrades/{id}/buy", s.handleBuyUpgrade)
		r.Post("/market/{id}/trigger", s.handleTriggerEvent)

		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
		r.Post("/checkpoint", s.handleCheckpoint)
		r.Post("/reset", s.handleReset)
	})
}

func (s *Server) handleLedger(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.LedgerView())
}

func (s *Server) handleAssets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Assets())
}

func (s *Server) handleUpgrades(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"upgrades": s.engine.Upgrades()})
}

func (s *Server) handleMarket(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Market())
}

func (s *Server) handleAchievements(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"achievements": s.engine.Achievements()})
}

func (s *Server) handleTiers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tiers": s.engine.Tiers()})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	out := []notify.Notification{}
	if s.inbox != nil {
		out = s.inbox.List(limit)
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": out})
}

func (s *Server) handleBuyAsset(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.BuyAsset(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSellAsset(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.SellAsset(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLevelAsset(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.LevelUpAsset(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.BuyUpgrade(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.TriggerEvent(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Start(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.LedgerView())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.LedgerView())
}

func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Checkpoint(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved_at": s.engine.LedgerView().LastSavedAt})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "reset requires confirm=true")
		return
	}
	if err := s.engine.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	s.log.Info("game reset via api", "request_id", middleware.GetReqID(r.Context()))
	writeJSON(w, http.StatusOK, s.engine.LedgerView())
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrUnknownAsset), errors.Is(err, game.ErrUnknownUpgrade), errors.Is(err, game.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInsufficientFunds), errors.Is(err, game.ErrNotOwned):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrAssetLocked), errors.Is(err, game.ErrUpgradeLocked):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, game.ErrUpgradeOwned), errors.Is(err, game.ErrEventActive),
		errors.Is(err, game.ErrNotRunning), errors.Is(err, game.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
