package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/baechuer/homi/internal/domain"
)

func TestVerifyEmail_Success_MarksVerified(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", false)

	if err := svc.VerifyEmail(context.Background(), "tok|verify_email|u1|a@b.co"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !d.users.byID["u1"].Verified {
		t.Fatalf("expected user verified")
	}
	requireAuditAction(t, d.audits, "verify_email")
}

func TestVerifyEmail_Idempotent(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", false)

	for i := 0; i < 2; i++ {
		if err := svc.VerifyEmail(context.Background(), "tok|verify_email|u1|a@b.co"); err != nil {
			t.Fatalf("call %d: expected nil, got %v", i, err)
		}
	}
	if len(d.users.setVerified) != 1 {
		t.Fatalf("expected one write, got %d", len(d.users.setVerified))
	}
	if !d.users.byID["u1"].Verified {
		t.Fatalf("expected user verified")
	}
}

func TestVerifyEmail_BadTokens_Rejected(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", false)

	cases := []string{
		"",
		"garbage",
		"tok|session|u1|a@b.co",        // session token is not a verification token
		"tok|password_reset|u1|a@b.co", // nor is a reset token
	}
	for _, tok := range cases {
		err := svc.VerifyEmail(context.Background(), tok)
		requireDomainCode(t, err, "token_invalid")
	}
	if d.users.byID["u1"].Verified {
		t.Fatalf("user must stay unverified")
	}
}

func TestVerifyEmail_Expired_Rejected(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", false)
	d.tokens.verifyErr = domain.ErrTokenExpired()

	err := svc.VerifyEmail(context.Background(), "tok|verify_email|u1|a@b.co")
	requireDomainCode(t, err, "token_invalid")
}

func TestVerifyEmail_UnknownSubject(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)

	err := svc.VerifyEmail(context.Background(), "tok|verify_email|ghost|g@b.co")
	requireDomainCode(t, err, "token_subject_unknown")
}

func TestResendVerification_NonEnumerating(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "v1", "verified@b.co", "password123", true)

	if err := svc.ResendVerification(context.Background(), "missing@b.co"); err != nil {
		t.Fatalf("unknown email: expected nil, got %v", err)
	}
	if err := svc.ResendVerification(context.Background(), "verified@b.co"); err != nil {
		t.Fatalf("verified email: expected nil, got %v", err)
	}
	if len(d.mailer.verifyMails) != 0 {
		t.Fatalf("expected no mail, got %d", len(d.mailer.verifyMails))
	}
}

func TestResendVerification_Unverified_SendsMail(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", false)

	if err := svc.ResendVerification(context.Background(), "A@B.CO"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(d.mailer.verifyMails) != 1 || d.mailer.verifyMails[0].UserID != "u1" {
		t.Fatalf("expected one mail to u1, got %+v", d.mailer.verifyMails)
	}
}

func TestResendVerification_MailFailure_Suppressed(t *testing.T) {
	t.Parallel()

	svc, d := newSvcForTest(t)
	seedUser(d, "u1", "a@b.co", "password123", false)
	d.mailer.verifyErr = errors.New("smtp down")

	if err := svc.ResendVerification(context.Background(), "a@b.co"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestResendVerification_MissingEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newSvcForTest(t)
	requireDomainCode(t, svc.ResendVerification(context.Background(), " "), "missing_field")
}
