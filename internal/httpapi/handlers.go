package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zachrip/valpal/internal/equip"
	"github.com/zachrip/valpal/internal/session"
	"github.com/zachrip/valpal/internal/watcher"
	"github.com/zachrip/valpal/pkg/types"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetStatus(wt Watcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := wt.Status(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func PutFlags(wt Watcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f watcher.Flags
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			writeError(w, http.StatusBadRequest, "invalid flags: "+err.Error())
			return
		}
		got, err := wt.SetFlags(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, got)
	}
}

// currentSession writes 503 and returns nil when the local client is not
// signed in.
func currentSession(w http.ResponseWriter, r *http.Request, s Sessions) *session.Session {
	sess := s.Resolve(r.Context())
	if sess == nil {
		writeError(w, http.StatusServiceUnavailable, "game client is not running")
	}
	return sess
}

func ListLoadouts(s Sessions, c Configs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(w, r, s)
		if sess == nil {
			return
		}
		cfg, err := c.GetUserConfig(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, cfg.Loadouts)
	}
}

type equipResponse struct {
	Equipped *types.Loadout `json:"equipped"`
}

// Equip picks a loadout the same way a lock does, narrowed by the agentId
// query parameter when present.
func Equip(s Sessions, e Equipper, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(w, r, s)
		if sess == nil {
			return
		}
		l, err := e.Equip(r.Context(), sess, r.URL.Query().Get("agentId"))
		respondEquip(w, l, err, log)
	}
}

func EquipLoadout(s Sessions, e Equipper, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(w, r, s)
		if sess == nil {
			return
		}
		l, err := e.EquipByID(r.Context(), sess, chi.URLParam(r, "loadoutID"))
		respondEquip(w, l, err, log)
	}
}

func respondEquip(w http.ResponseWriter, l *types.Loadout, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, equip.ErrUnknownLoadout):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		log.Warn("equip request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeJSON(w, http.StatusOK, equipResponse{Equipped: l})
	}
}
