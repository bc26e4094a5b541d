package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/baechuer/homi/internal/domain"
)

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID    map[string]domain.User
	byEmail map[string]domain.User

	// injected errors (if set, method returns error)
	getByIDErr     error
	getByEmailErr  error
	createErr      error
	updatePwdErr   error
	setVerifiedErr error
	touchErr       error

	// record calls
	updatedPwd  []struct{ id, hash string }
	setVerified []string
	touched     []string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:    map[string]domain.User{},
		byEmail: map[string]domain.User{},
	}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByEmailErr != nil {
		return domain.User{}, f.getByEmailErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getByIDErr != nil {
		return domain.User{}, f.getByIDErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetPublicByID(ctx context.Context, id string) (domain.User, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	return u.Public(), nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, dup := f.byEmail[u.Email]; dup {
		return domain.User{}, domain.ErrEmailAlreadyExists()
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserRepo) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updatePwdErr != nil {
		return f.updatePwdErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.PasswordHash = newHash
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.updatedPwd = append(f.updatedPwd, struct{ id, hash string }{userID, newHash})
	return nil
}

func (f *fakeUserRepo) SetVerified(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setVerifiedErr != nil {
		return f.setVerifiedErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.Verified = true
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.setVerified = append(f.setVerified, userID)
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.touchErr != nil {
		return f.touchErr
	}
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound()
	}
	u.LastLogin = &at
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	f.touched = append(f.touched, userID)
	return nil
}

type fakeHasher struct {
	hashFn    func(pw string) (string, error)
	compareFn func(hash, pw string) error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	if h.compareFn != nil {
		return h.compareFn(hash, password)
	}
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

// fakeTokens mints "tok|<purpose>|<uid>|<email>" and honours the purpose on verify.
type fakeTokens struct {
	mu sync.Mutex

	issueErr  error
	verifyErr error

	issued []struct {
		claims TokenClaims
		ttl    time.Duration
	}
}

func (f *fakeTokens) Issue(c TokenClaims, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.issued = append(f.issued, struct {
		claims TokenClaims
		ttl    time.Duration
	}{c, ttl})
	return fmt.Sprintf("tok|%s|%s|%s", c.Purpose, c.UserID, c.Email), nil
}

func (f *fakeTokens) Verify(token string, purpose Purpose) (TokenClaims, error) {
	if f.verifyErr != nil {
		return TokenClaims{}, f.verifyErr
	}
	parts := strings.Split(token, "|")
	if len(parts) != 4 || parts[0] != "tok" {
		return TokenClaims{}, domain.ErrTokenMalformed()
	}
	if Purpose(parts[1]) != purpose {
		return TokenClaims{}, domain.ErrTokenMalformed()
	}
	return TokenClaims{UserID: parts[2], Email: parts[3], Purpose: purpose}, nil
}

func (f *fakeTokens) ttlFor(p Purpose) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.issued {
		if i.claims.Purpose == p {
			return i.ttl
		}
	}
	return 0
}

type fakeMailer struct {
	mu sync.Mutex

	verifyErr error
	resetErr  error
	// block, when set, waits for ctx to end before returning its error
	block bool

	verifyMails []VerifyEmailMail
	resetMails  []PasswordResetMail
}

func (m *fakeMailer) SendVerifyEmail(ctx context.Context, msg VerifyEmailMail) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifyErr != nil {
		return m.verifyErr
	}
	m.verifyMails = append(m.verifyMails, msg)
	return nil
}

func (m *fakeMailer) SendPasswordReset(ctx context.Context, msg PasswordResetMail) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resetMails = append(m.resetMails, msg)
	return nil
}

/*
Service factory for tests
*/

type svcDeps struct {
	users  *fakeUserRepo
	hasher *fakeHasher
	tokens *fakeTokens
	mailer *fakeMailer
	audits *[]auditEntry
}

func newSvcForTest(t *testing.T, mutate ...func(*Config)) (*Service, svcDeps) {
	t.Helper()

	d := svcDeps{
		users:  newFakeUserRepo(),
		hasher: &fakeHasher{},
		tokens: &fakeTokens{},
		mailer: &fakeMailer{},
		audits: &[]auditEntry{},
	}

	cfg := Config{
		SessionTTL:            7 * 24 * time.Hour,
		VerifyEmailTokenTTL:   time.Hour,
		PasswordResetTokenTTL: time.Hour,
		MailTimeout:           50 * time.Millisecond,
		VerifyEmailBaseURL:    "https://fe/verify-email?token=",
		PasswordResetBaseURL:  "https://fe/reset-password?token=",
		SendVerificationEmail: true,
	}
	for _, m := range mutate {
		m(&cfg)
	}

	audits := d.audits
	svc := NewService(d.users, d.hasher, d.tokens, d.mailer, cfg).
		WithAudit(func(action string, fields map[string]string) {
			cp := map[string]string{}
			for k, v := range fields {
				cp[k] = v
			}
			*audits = append(*audits, auditEntry{action: action, fields: cp})
		})

	return svc, d
}

func seedUser(d svcDeps, id, email, password string, verified bool) domain.User {
	u := domain.User{
		ID:           id,
		Name:         "Test " + id,
		Email:        email,
		PasswordHash: "hash:" + password,
		Verified:     verified,
		CreatedAt:    time.Now(),
	}
	d.users.put(u)
	return u
}

/*
Small assertions
*/

func domainCode(err error) string {
	if err == nil {
		return ""
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "non_domain_error"
}

func requireDomainCode(t *testing.T, err error, wantCode string) {
	t.Helper()
	got := domainCode(err)
	if got != wantCode {
		t.Fatalf("expected domain code %q, got %q (err=%v)", wantCode, got, err)
	}
}

func requireAuditAction(t *testing.T, audits *[]auditEntry, wantAction string) auditEntry {
	t.Helper()
	if audits == nil || len(*audits) == 0 {
		t.Fatalf("expected audit entry, got none")
	}
	e := (*audits)[len(*audits)-1]
	if e.action != wantAction {
		t.Fatalf("expected audit action %q, got %q", wantAction, e.action)
	}
	return e
}
