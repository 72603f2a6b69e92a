package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pairlock "github.com/pairlock/pairlock"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type userIDResponse struct {
	UserID string `json:"user_id"`
}

type successResponse struct {
	Success string `json:"success"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type userIDRequest struct {
	UserID string `json:"user_id"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req userIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setResponse(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}

	tokens, err := s.engine.Issue(s.requestContext(r), req.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setResponse(w, http.StatusOK, tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	res, err := s.engine.Validate(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setResponse(w, http.StatusOK, userIDResponse{UserID: res.UserID})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setResponse(w, http.StatusBadRequest, errorResponse{Error: "Invalid request"})
		return
	}

	tokens, err := s.engine.Refresh(s.requestContext(r), bearerToken(r), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setResponse(w, http.StatusOK, tokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Logout(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, r, err)
		return
	}

	setResponse(w, http.StatusOK, successResponse{Success: "Successfully logged out"})
}

// requestContext attaches the request's fingerprints for the engine's
// binding checks.
func (s *Server) requestContext(r *http.Request) context.Context {
	ctx := pairlock.WithUserAgent(r.Context(), r.UserAgent())
	return pairlock.WithNetworkOrigin(ctx, clientOrigin(r))
}

// writeError maps engine errors onto the wire contract. The strings are
// stable; clients match on them.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pairlock.ErrAuthRequired):
		setResponse(w, http.StatusUnauthorized, errorResponse{Error: "Authorization required"})
	case errors.Is(err, pairlock.ErrTokenInvalid):
		setResponse(w, http.StatusUnauthorized, errorResponse{Error: "Invalid token"})
	case errors.Is(err, pairlock.ErrTokenRevoked):
		setResponse(w, http.StatusUnauthorized, errorResponse{Error: "Token revoked"})
	case errors.Is(err, pairlock.ErrIncorrectPair):
		setResponse(w, http.StatusUnauthorized, errorResponse{Error: "Incorrect tokens pair"})
	case errors.Is(err, pairlock.ErrDeviceChanged):
		setResponse(w, http.StatusUnauthorized, errorResponse{Error: "User-Agent changed"})
	case errors.Is(err, pairlock.ErrEmptyUserID):
		setResponse(w, http.StatusBadRequest, errorResponse{Error: "Empty user id"})
	case errors.Is(err, pairlock.ErrRefreshRateLimited):
		setResponse(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests"})
	default:
		s.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		setResponse(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
	}
}
