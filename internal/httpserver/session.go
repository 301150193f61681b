package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/pairs/internal/game"
)

const sessionCookieName = "pairs_session"

var errBadSession = errors.New("invalid session token")

// signSession creates an HS256 JWT binding the bearer to one game.
func (s *Server) signSession(gameID string) (string, time.Time, error) {
	now := s.opts.Clock.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseSession validates a token and returns the game it grants access to.
func (s *Server) parseSession(tok string) (string, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.opts.Clock.Now),
	)
	if err != nil || !t.Valid {
		return "", errBadSession
	}
	gid, _ := claims["gid"].(string)
	if gid == "" {
		return "", errBadSession
	}
	return gid, nil
}

// setSessionCookie scopes the cookie to the game's own API path, so several
// games can be open in one browser.
func (s *Server) setSessionCookie(w http.ResponseWriter, gameID, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/api/game/" + gameID,
		HttpOnly: true,
		Secure:   strings.HasPrefix(s.opts.PublicURL, "https://"),
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

// sessionToken extracts a token from the Authorization header, the session
// cookie or, for websocket upgrades, the "token" query parameter.
func sessionToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

type ctxGameKey struct{}

// requireSession enforces a valid token for the {id} in the path and loads the
// game into the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		tok := sessionToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		gid, err := s.parseSession(tok)
		if err != nil || gid != id {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		g, err := s.opts.Store.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		ctx := context.WithValue(r.Context(), ctxGameKey{}, g)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func gameFrom(ctx context.Context) *game.Game {
	g, _ := ctx.Value(ctxGameKey{}).(*game.Game)
	return g
}
