package http_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baechuer/homi/internal/application/auth"
	"github.com/baechuer/homi/internal/application/journal"
	"github.com/baechuer/homi/internal/domain"
	"github.com/baechuer/homi/internal/transport/http/middleware"
)

// mustJSONBody marshals v to JSON and returns an io.Reader for request body.
func mustJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

// envelope is the decoded response shape shared by success and error paths.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
	Code    string            `json:"code"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rr.Body.String())
	}
	return env
}

func withUserCtx(req *http.Request, u domain.User) *http.Request {
	return req.WithContext(middleware.WithUser(req.Context(), u))
}

// ---- account service fake ----

type fakeAccounts struct {
	registerIn  auth.RegisterInput
	registerRes auth.AuthResult
	registerErr error

	loginEmail, loginPassword string
	loginRes                  auth.AuthResult
	loginErr                  error

	verifyToken string
	verifyErr   error

	resendEmail string
	resetEmail  string
	resetReqErr error

	resetToken, resetPassword string
	resetErr                  error

	me    domain.User
	meErr error
}

func (f *fakeAccounts) Register(_ context.Context, in auth.RegisterInput) (auth.AuthResult, error) {
	f.registerIn = in
	return f.registerRes, f.registerErr
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (auth.AuthResult, error) {
	f.loginEmail, f.loginPassword = email, password
	return f.loginRes, f.loginErr
}

func (f *fakeAccounts) VerifyEmail(_ context.Context, token string) error {
	f.verifyToken = token
	return f.verifyErr
}

func (f *fakeAccounts) ResendVerification(_ context.Context, email string) error {
	f.resendEmail = email
	return nil
}

func (f *fakeAccounts) RequestPasswordReset(_ context.Context, email string) error {
	f.resetEmail = email
	return f.resetReqErr
}

func (f *fakeAccounts) ResetPassword(_ context.Context, token, newPassword string) error {
	f.resetToken, f.resetPassword = token, newPassword
	return f.resetErr
}

func (f *fakeAccounts) GetUserByID(_ context.Context, _ string) (domain.User, error) {
	return f.me, f.meErr
}

// ---- journal service fake ----

type addCall struct {
	userID   string
	text     string
	feedback bool
}

type fakeJournal struct {
	adds    []addCall
	addRes  domain.Entry
	addErr  error
	page    int
	size    int
	listRes journal.Page
	listErr error
}

func (f *fakeJournal) AddEntry(_ context.Context, userID, text string, requestFeedback bool) (domain.Entry, error) {
	f.adds = append(f.adds, addCall{userID, text, requestFeedback})
	return f.addRes, f.addErr
}

func (f *fakeJournal) ListEntries(_ context.Context, _ string, page, pageSize int) (journal.Page, error) {
	f.page, f.size = page, pageSize
	return f.listRes, f.listErr
}
