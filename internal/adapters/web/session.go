package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

const (
	sessionCookie = "inbox_session"
	flashCookie   = "inbox_flash"
)

type userKey struct{}

// flash is a one-shot message shown on the next rendered page
type flash struct {
	Category string
	Message  string
}

func userFrom(ctx context.Context) *core.User {
	u, _ := ctx.Value(userKey{}).(*core.User)
	return u
}

// requireUser redirects anonymous requests to the login page, or answers 401 for the API
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			if isAPI(r) {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "login required")
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey{}, user)))
	}
}

func (s *Server) currentUser(r *http.Request) *core.User {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	sess, err := s.sessions.Get(r.Context(), c.Value)
	if err != nil {
		return nil
	}
	user, err := s.users.Get(r.Context(), sess.UserID)
	if err != nil {
		s.logger.Warn("Session refers to a missing user", zap.Int64("user_id", sess.UserID), zap.Error(err))
		return nil
	}
	return user
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *core.User) error {
	sess, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.sessions.Delete(r.Context(), c.Value); err != nil {
			s.logger.Warn("Failed to delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

func setFlash(w http.ResponseWriter, category, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending flash message
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	value, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(value, "|")
	if !ok {
		return &flash{Category: "success", Message: value}
	}
	return &flash{Category: category, Message: message}
}
