package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const maxBodySize = 1 << 12

type createRequest struct {
	HostPlayerID string          `json:"hostPlayerId"`
	Opponent     entity.Opponent `json:"opponent,omitempty"`
}

type joinRequest struct {
	GuestPlayerID string `json:"guestPlayerId"`
}

type moveRequest struct {
	Position *int   `json:"position"`
	PlayerID string `json:"playerId"`
}

type pollResponse struct {
	HasUpdate   bool            `json:"hasUpdate"`
	Session     *entity.Session `json:"session,omitempty"`
	LastUpdate  *time.Time      `json:"lastUpdate,omitempty"`
	LastChecked *time.Time      `json:"lastChecked,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (that *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, "handleCreate", err)
		return
	}

	session, err := that.manager.CreateWithOpponent(r.Context(), req.HostPlayerID, req.Opponent)
	if err != nil {
		that.writeError(w, "handleCreate", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (that *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		that.writeError(w, "handleGet", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (that *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, "handleJoin", err)
		return
	}

	session, err := that.manager.Join(r.Context(), r.PathValue("code"), req.GuestPlayerID)
	if err != nil {
		that.writeError(w, "handleJoin", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (that *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		that.writeError(w, "handleMove", err)
		return
	}

	if req.Position == nil {
		that.writeError(w, "handleMove", fmt.Errorf("%w: position is required", apperror.ErrInvalidArgument))
		return
	}

	session, err := that.manager.Move(r.Context(), r.PathValue("code"), req.PlayerID, *req.Position)
	if err != nil {
		that.writeError(w, "handleMove", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (that *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.Reset(r.Context(), r.PathValue("code"))
	if err != nil {
		that.writeError(w, "handleReset", err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handlePoll - answers whether the session changed after lastUpdate.
func (that *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	var since *time.Time

	if raw := r.URL.Query().Get("lastUpdate"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			that.writeError(w, "handlePoll", fmt.Errorf("%w: lastUpdate: %w", apperror.ErrInvalidArgument, err))
			return
		}
		since = &parsed
	}

	result, err := that.manager.Poll(r.Context(), r.PathValue("code"), since)
	if err != nil {
		that.writeError(w, "handlePoll", err)
		return
	}

	resp := pollResponse{HasUpdate: result.HasUpdate}
	if result.HasUpdate {
		resp.Session = result.Session
		resp.LastUpdate = &result.Session.UpdatedAt
	} else {
		resp.LastChecked = &result.CheckedAt
	}

	writeJSON(w, http.StatusOK, resp)
}

func (that *Server) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		message = http.StatusText(status)
	} else {
		that.logger.Debug("request rejected", "method", method, "error", err)
	}

	writeJSON(w, status, errorResponse{Message: message})
}

// decodeBody - rejects unknown fields, trailing data and oversized bodies.
// An empty body decodes into the zero value.
func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %w", apperror.ErrInvalidArgument, err)
	}

	if len(body) > maxBodySize {
		return fmt.Errorf("%w: body too large", apperror.ErrInvalidArgument)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.DisallowUnknownFields()

	if err = decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidArgument, err)
	}

	if decoder.More() {
		return fmt.Errorf("%w: trailing data after body", apperror.ErrInvalidArgument)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}
