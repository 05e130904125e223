package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nutrio/nutrio/internal/app/progression"
	"github.com/nutrio/nutrio/internal/domain"
)

// maxBody bounds request bodies; every request here is a small JSON object.
const maxBody = 64 << 10

// decodeBody reads an optional JSON body into v. An empty body leaves v as is.
func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ─── Catalog ────────────────────────────────────────────────────────────────

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"levels": progression.Levels(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.progression.Engine().Catalog()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sources":      cat.Sources(),
		"caps":         cat.Caps(),
		"achievements": cat.Achievements(),
	})
}

// ─── Progression ────────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.progression.Status(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	var req progression.GrantRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Source == "" {
		writeError(w, http.StatusBadRequest, "source is required")
		return
	}
	res, err := s.progression.Grant(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	res, err := s.progression.UnlockAchievement(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "achievementID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAckUnlocks(w http.ResponseWriter, r *http.Request) {
	n, err := s.progression.AckRecentUnlocks(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"acknowledged": n})
}

type rehydrateRequest struct {
	TotalXP *int `json:"total_xp"`
}

func (s *Server) handleRehydrate(w http.ResponseWriter, r *http.Request) {
	var req rehydrateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.TotalXP == nil {
		writeError(w, http.StatusBadRequest, "total_xp is required")
		return
	}
	d, err := s.progression.Rehydrate(r.Context(), chi.URLParam(r, "userID"), *req.TotalXP)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	res, err := s.progression.RecordActivity(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ─── Notifications ──────────────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.notifications == nil {
		writeError(w, http.StatusNotFound, "notifications are disabled")
		return
	}
	uid, err := domain.NormalizeUserID(chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	list, err := s.notifications.Pending(r.Context(), uid, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": list,
	})
}

func (s *Server) handleNotificationShown(w http.ResponseWriter, r *http.Request) {
	if s.notifications == nil {
		writeError(w, http.StatusNotFound, "notifications are disabled")
		return
	}
	uid, err := domain.NormalizeUserID(chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if err := s.notifications.MarkShown(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shown"})
}
