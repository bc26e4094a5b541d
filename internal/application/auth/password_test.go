package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRequestPasswordReset_MissingEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)
	requireDomainCode(t, svc.RequestPasswordReset(context.Background(), ""), "missing_field")
}

func TestRequestPasswordReset_UnknownEmail_NotFound(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)

	err := svc.RequestPasswordReset(context.Background(), "ghost@b.co")
	requireDomainCode(t, err, "user_not_found")
	if len(d.mailer.resetMails) != 0 {
		t.Fatalf("expected no mail")
	}
}

func TestRequestPasswordReset_Success_MailsLink(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", true)

	if err := svc.RequestPasswordReset(context.Background(), "a@b.co"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(d.mailer.resetMails) != 1 {
		t.Fatalf("expected 1 reset mail, got %d", len(d.mailer.resetMails))
	}
	if !strings.HasPrefix(d.mailer.resetMails[0].URL, "https://fe/reset-password?token=tok|password_reset|u1|") {
		t.Fatalf("unexpected link %q", d.mailer.resetMails[0].URL)
	}
	if got := d.tokens.ttlFor(PurposePasswordReset); got != time.Hour {
		t.Fatalf("expected 1h reset ttl, got %v", got)
	}
	requireAuditAction(t, d.audits, "password_reset_request")
}

func TestRequestPasswordReset_MailFailure_Internal(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", true)
	d.mailer.resetErr = errors.New("smtp down")

	err := svc.RequestPasswordReset(context.Background(), "a@b.co")
	requireDomainCode(t, err, "mail_dispatch_failed")
}

func TestResetPassword_InputChecks(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)
	ctx := context.Background()

	requireDomainCode(t, svc.ResetPassword(ctx, "", "password123"), "missing_field")
	requireDomainCode(t, svc.ResetPassword(ctx, "tok|password_reset|u1|a@b.co", ""), "missing_field")
	requireDomainCode(t, svc.ResetPassword(ctx, "tok|password_reset|u1|a@b.co", "short"), "invalid_field")
}

func TestResetPassword_WrongPurposeToken_Rejected(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", true)

	err := svc.ResetPassword(context.Background(), "tok|verify_email|u1|a@b.co", "newpassword1")
	requireDomainCode(t, err, "token_invalid")
	if len(d.users.updatedPwd) != 0 {
		t.Fatalf("password must not change")
	}
}

func TestResetPassword_UnknownSubject(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	err := svc.ResetPassword(context.Background(), "tok|password_reset|ghost|g@b.co", "newpassword1")
	requireDomainCode(t, err, "token_subject_unknown")
}

func TestResetPassword_Success_NewPasswordWorks(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", true)
	ctx := context.Background()

	if err := svc.ResetPassword(ctx, "tok|password_reset|u1|a@b.co", "newpassword1"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	if _, err := svc.Login(ctx, "a@b.co", "password123"); domainCode(err) != "invalid_credentials" {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := svc.Login(ctx, "a@b.co", "newpassword1"); err != nil {
		t.Fatalf("new password: %v", err)
	}
}

func TestGetUserByID_StripsHash(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", true)

	u, err := svc.GetUserByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if u.PasswordHash != "" {
		t.Fatalf("password hash leaked")
	}
}
