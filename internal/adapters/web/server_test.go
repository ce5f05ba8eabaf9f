package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mikey/inbox-clusterer/internal/adapters/session"
	"github.com/mikey/inbox-clusterer/internal/adapters/store"
	"github.com/mikey/inbox-clusterer/internal/core"
)

type fakeRunner struct {
	mu   sync.Mutex
	repo core.ClusterRepository
	reqs []core.RunRequest
	err  error
}

func (f *fakeRunner) requests() []core.RunRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.RunRequest(nil), f.reqs...)
}

func (f *fakeRunner) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeRunner) Run(ctx context.Context, req core.RunRequest) (*core.RunResult, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	bucket := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	result := &core.RunResult{
		RunID:  "01HTEST",
		Report: []core.ReportRow{{Bucket: bucket, ClusterID: 0, Count: 2}},
		Clusters: []core.ClusterResult{
			{ClusterID: 0, Summary: "Budget review.", Keywords: []string{"budget"}, EmailIDs: []string{"1", "2"}, Count: 2},
		},
	}
	err = f.repo.SaveClusters(ctx, []*core.ClusterRecord{{
		RunID:       result.RunID,
		UserID:      req.UserID,
		ClusterID:   0,
		Summary:     "Budget review.",
		Keywords:    []string{"budget"},
		EmailIDs:    []string{"1", "2"},
		EmailCount:  2,
		StartDate:   req.Since,
		ProcessedAt: time.Now().UTC(),
	}})
	return result, err
}

type testEnv struct {
	server *httptest.Server
	client *http.Client
	runner *fakeRunner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore(nil, 0, 0)
	sessions := session.NewMemoryStore(nil, time.Hour, 0)
	t.Cleanup(func() {
		st.Close()
		sessions.Stop()
	})

	runner := &fakeRunner{repo: st}
	srv, err := NewServer(runner, core.NewUserService(st, nil), st, sessions, nil, "127.0.0.1:0", time.Hour)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{server: ts, client: client, runner: runner}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (e *testEnv) signUp(t *testing.T) {
	t.Helper()
	resp, _ := e.post(t, "/sign-up", url.Values{
		"email":     {"alice@example.com"},
		"firstName": {"Alice"},
		"password1": {"password123"},
		"password2": {"password123"},
	})
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect home after sign-up, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.get(t, "/api/health")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ok"`) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, body)
	}
}

func TestAnonymousAccess(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to login, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	resp, body := env.get(t, "/api/clusters")
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, "unauthorized") {
		t.Fatalf("expected 401, got %d %s", resp.StatusCode, body)
	}

	resp, body = env.get(t, "/login")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `action="/login"`) {
		t.Fatalf("expected login page, got %d", resp.StatusCode)
	}
}

func TestSignUpValidation(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.post(t, "/sign-up", url.Values{
		"email":     {"alice@example.com"},
		"firstName": {"Alice"},
		"password1": {"short"},
		"password2": {"short"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Password must be at least 8 characters.") {
		t.Fatalf("expected validation message in body:\n%s", body)
	}
	if !strings.Contains(body, `value="alice@example.com"`) {
		t.Fatalf("expected the email to be kept in the form")
	}

	env.signUp(t)
	env.get(t, "/logout")
	resp, body = env.post(t, "/sign-up", url.Values{
		"email":     {"alice@example.com"},
		"firstName": {"Alice"},
		"password1": {"password123"},
		"password2": {"password123"},
	})
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "Account already exists.") {
		t.Fatalf("expected duplicate account error, got %d", resp.StatusCode)
	}
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	env.get(t, "/logout")

	resp, _ := env.get(t, "/")
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected logged out redirect, got %d", resp.StatusCode)
	}

	resp, _ = env.post(t, "/login", url.Values{"email": {"alice@example.com"}, "password": {"nope-nope"}})
	if resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected failed login to return to login page, got %s", resp.Header.Get("Location"))
	}
	_, body := env.get(t, "/login")
	if !strings.Contains(body, "Incorrect password") {
		t.Fatalf("expected incorrect password flash:\n%s", body)
	}

	env.post(t, "/login", url.Values{"email": {"nobody@example.com"}, "password": {"password123"}})
	_, body = env.get(t, "/login")
	if !strings.Contains(body, "Email does not exist") {
		t.Fatalf("expected unknown email flash:\n%s", body)
	}

	resp, _ = env.post(t, "/login", url.Values{"email": {"alice@example.com"}, "password": {"password123"}})
	if resp.Header.Get("Location") != "/" {
		t.Fatalf("expected login to redirect home, got %s", resp.Header.Get("Location"))
	}
	resp, body = env.get(t, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Hello Alice") {
		t.Fatalf("expected home page, got %d", resp.StatusCode)
	}
}

func TestRunAndAPI(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)

	resp, _ := env.post(t, "/", url.Values{"from_date": {"15/01/2024"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", resp.StatusCode)
	}
	_, body := env.get(t, "/")
	if !strings.Contains(body, "Invalid date format. Please use YYYY-MM-DD.") {
		t.Fatalf("expected invalid date flash:\n%s", body)
	}
	if len(env.runner.requests()) != 0 {
		t.Fatalf("runner must not be called for an invalid date")
	}

	env.post(t, "/", url.Values{"from_date": {"2024-01-14"}, "k": {"3"}})
	if len(env.runner.requests()) != 1 {
		t.Fatalf("expected one run, got %d", len(env.runner.requests()))
	}
	req := env.runner.requests()[0]
	if req.K != 3 || !req.Since.Equal(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected run request %+v", req)
	}

	_, body = env.get(t, "/")
	if !strings.Contains(body, "Emails processed and clustered successfully!") || !strings.Contains(body, "Budget review.") {
		t.Fatalf("expected run results on home page:\n%s", body)
	}

	_, body = env.get(t, "/api/clusters")
	var clusters struct {
		Clusters []clusterJSON `json:"clusters"`
	}
	if err := json.Unmarshal([]byte(body), &clusters); err != nil {
		t.Fatalf("invalid clusters JSON: %v", err)
	}
	if len(clusters.Clusters) != 1 || clusters.Clusters[0].StartDate != "2024-01-14" || clusters.Clusters[0].EmailCount != 2 {
		t.Fatalf("unexpected clusters %+v", clusters.Clusters)
	}

	_, body = env.get(t, "/api/report")
	if !strings.Contains(body, `"hour":"2024-01-15T10:00:00Z"`) || !strings.Contains(body, `"count":2`) {
		t.Fatalf("unexpected report %s", body)
	}
}

func TestRunErrorMessages(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t)
	env.runner.fail(fmt.Errorf("%w: k=5 exceeds 3 emails", core.ErrInvalidClusterCount))

	env.post(t, "/", url.Values{"from_date": {"2024-01-14"}})
	_, body := env.get(t, "/")
	if !strings.Contains(body, "fewer emails than requested clusters") {
		t.Fatalf("expected cluster count message:\n%s", body)
	}

	kinds := map[error]string{
		core.ErrEmptyInput:       "No emails",
		core.ErrInsufficientData: "Not enough distinct emails",
		core.ErrSourceFailed:     "Could not fetch",
		core.ErrInvalidDate:      "must not be in the future",
		fmt.Errorf("boom"):       "Error processing emails.",
	}
	for err, want := range kinds {
		if got := runErrorMessage(err); !strings.Contains(got, want) {
			t.Errorf("runErrorMessage(%v) = %q, want it to contain %q", err, got, want)
		}
	}
}
