package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"go.uber.org/zap"
)

// dateLayout is the format of the from_date form field
const dateLayout = "2006-01-02"

type pageData struct {
	User  *core.User
	Flash *flash
	Runs  []runView
	Today string
	Email string
	Name  string
}

// runView groups the persisted clusters of one run for display
type runView struct {
	RunID       string
	StartDate   time.Time
	ProcessedAt time.Time
	Emails      int
	Clusters    []*core.ClusterRecord
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	if data.Flash == nil {
		data.Flash = popFlash(w, r)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[page].Execute(w, data); err != nil {
		s.logger.Error("Failed to render page", zap.String("page", page), zap.Error(err))
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login", pageData{User: s.currentUser(r)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	user, err := s.users.Authenticate(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			setFlash(w, "failed", loginMessage(err))
		} else {
			s.logger.Error("Login failed", zap.Error(err))
			setFlash(w, "failed", "Login failed. Please try again.")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		setFlash(w, "failed", "Login failed. Please try again.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	setFlash(w, "success", "Logged in successfully")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func loginMessage(err error) string {
	if errors.Is(err, core.ErrUnknownEmail) {
		return "Email does not exist"
	}
	return "Incorrect password"
}

func (s *Server) handleSignUpPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "sign_up", pageData{User: s.currentUser(r)})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	firstName := r.FormValue("firstName")
	user, err := s.users.SignUp(r.Context(), email, firstName, r.FormValue("password1"), r.FormValue("password2"))
	if err != nil {
		var message string
		switch {
		case errors.Is(err, core.ErrUserExists):
			message = "Account already exists."
		case errors.Is(err, core.ErrInvalidSignUp):
			message = signUpMessage(err)
		default:
			s.logger.Error("Sign-up failed", zap.Error(err))
			message = "Could not create the account. Please try again."
		}
		s.render(w, r, http.StatusBadRequest, "sign_up", pageData{
			Flash: &flash{Category: "failed", Message: message},
			Email: email,
			Name:  firstName,
		})
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	setFlash(w, "success", "Successfully created account.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// signUpMessage turns a validation error into a sentence for the form
func signUpMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), core.ErrInvalidSignUp.Error()+": ")
	if msg == "" {
		return "Invalid sign-up."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	records, err := s.clusters.ListClusters(r.Context(), user.ID)
	if err != nil {
		s.logger.Error("Failed to list clusters", zap.Int64("user_id", user.ID), zap.Error(err))
		http.Error(w, "failed to load clusters", http.StatusInternalServerError)
		return
	}
	s.render(w, r, http.StatusOK, "home", pageData{
		User:  user,
		Runs:  groupRuns(records),
		Today: time.Now().UTC().Format(dateLayout),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	since, err := time.Parse(dateLayout, strings.TrimSpace(r.FormValue("from_date")))
	if err != nil {
		setFlash(w, "failed", "Invalid date format. Please use YYYY-MM-DD.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	k := 0
	if raw := strings.TrimSpace(r.FormValue("k")); raw != "" {
		k, err = strconv.Atoi(raw)
		if err != nil || k < 1 {
			setFlash(w, "failed", "The number of clusters must be a positive whole number.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	result, err := s.runner.Run(r.Context(), core.RunRequest{UserID: user.ID, Since: since, K: k})
	if err != nil {
		s.logger.Warn("Clustering run failed",
			zap.Int64("user_id", user.ID),
			zap.String("kind", core.ErrorKind(err)),
			zap.Error(err))
		setFlash(w, "failed", runErrorMessage(err))
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	s.setLastReport(user.ID, result.Report)
	setFlash(w, "success", "Emails processed and clustered successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// runErrorMessage maps a run failure to a message per error kind
func runErrorMessage(err error) string {
	switch core.ErrorKind(err) {
	case "invalid_date":
		return "The start date must not be in the future."
	case "empty_input":
		return "No emails with readable content were found since that date."
	case "insufficient_data":
		return "Not enough distinct emails to cluster. Try an earlier start date."
	case "invalid_cluster_count":
		return "There are fewer emails than requested clusters. Lower the cluster count or pick an earlier date."
	case "invalid_timestamp":
		return "Some emails carry an unreadable date and could not be reported."
	case "source":
		return "Could not fetch emails from the mailbox."
	default:
		return "Error processing emails."
	}
}

// groupRuns groups records, already ordered newest run first, by run
func groupRuns(records []*core.ClusterRecord) []runView {
	var runs []runView
	for _, rec := range records {
		if len(runs) == 0 || runs[len(runs)-1].RunID != rec.RunID {
			runs = append(runs, runView{
				RunID:       rec.RunID,
				StartDate:   rec.StartDate,
				ProcessedAt: rec.ProcessedAt,
			})
		}
		last := &runs[len(runs)-1]
		last.Clusters = append(last.Clusters, rec)
		last.Emails += rec.EmailCount
	}
	return runs
}
