package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/baechuer/homi/internal/application/auth"
)

// message is one rendered account email.
type message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

var layout = template.Must(template.New("mail").Parse(`<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>{{.Title}}</h2>
    <p>{{.Intro}}</p>
    <p>
      <a href="{{.Link}}" style="display:inline-block; padding:10px 14px; text-decoration:none; border-radius:6px; background:#6b5b95; color:#fff;">{{.Button}}</a>
    </p>
    <p style="color:#555; font-size:12px;">
      If the button doesn't work, open this link:<br/>
      <a href="{{.Link}}">{{.Link}}</a>
    </p>
  </body>
</html>`))

type layoutData struct {
	Title  string
	Intro  string
	Button string
	Link   string
}

func render(d layoutData) (string, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func verifyEmailMessage(m auth.VerifyEmailMail) (message, error) {
	body, err := render(layoutData{
		Title:  "Welcome to Homi!",
		Intro:  "Please verify your email address to start journaling.",
		Button: "Verify email",
		Link:   m.URL,
	})
	if err != nil {
		return message{}, err
	}
	return message{
		To:      m.Email,
		Subject: "Verify your Homi account",
		Text:    fmt.Sprintf("Welcome to Homi!\n\nVerify your email by opening this link:\n\n%s\n\nThe link expires in 1 hour.\n", m.URL),
		HTML:    body,
	}, nil
}

func passwordResetMessage(m auth.PasswordResetMail) (message, error) {
	body, err := render(layoutData{
		Title:  "Password Reset",
		Intro:  "Click the button below to reset your password. This link expires in 1 hour.",
		Button: "Reset password",
		Link:   m.URL,
	})
	if err != nil {
		return message{}, err
	}
	return message{
		To:      m.Email,
		Subject: "Reset your Homi password",
		Text:    fmt.Sprintf("Reset your password by opening this link:\n\n%s\n\nThe link expires in 1 hour.\n", m.URL),
		HTML:    body,
	}, nil
}
