package service

import (
	"bytes"
	"context"
	"strconv"
	"text/template"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
)

const DefaultSiteName = "mauth"

const welcomeTemplate = `Hi {{.Name}},

Welcome to {{.SiteName}}. Your account has been created with the email {{.Email}}.
`

const verifyOTPTemplate = `Hi,

Your account verification code for {{.SiteName}} is:

{{.OTP}}

The code is valid for {{.Validity}}. Verify your account using this code.
`

const resetOTPTemplate = `Hi,

Your password reset code for {{.SiteName}} is:

{{.OTP}}

The code is valid for {{.Validity}}. If you did not request a password reset, you can ignore this email.
`

type mailParams struct {
	SiteName string
	Name     string
	Email    string
	OTP      string
	Validity string
}

// Notifier renders and delivers the account mails. Every delivery failure is
// returned as a mail SourceError.
type Notifier struct {
	sender   EmailSender
	siteName string
	welcome  *template.Template
	verify   *template.Template
	reset    *template.Template
}

func NewNotifier(sender EmailSender, siteName string) *Notifier {
	if siteName == "" {
		siteName = DefaultSiteName
	}
	return &Notifier{
		sender:   sender,
		siteName: siteName,
		welcome:  template.Must(template.New("welcome").Parse(welcomeTemplate)),
		verify:   template.Must(template.New("verify").Parse(verifyOTPTemplate)),
		reset:    template.Must(template.New("reset").Parse(resetOTPTemplate)),
	}
}

func (n *Notifier) SendWelcome(ctx context.Context, name, email string) error {
	return n.deliver(ctx, email, "Welcome to "+n.siteName, n.welcome, mailParams{Name: name, Email: email})
}

func (n *Notifier) SendVerifyOTP(ctx context.Context, email, otp string, validity time.Duration) error {
	return n.deliver(ctx, email, "Account Verification OTP", n.verify, mailParams{Email: email, OTP: otp, Validity: humanDuration(validity)})
}

func (n *Notifier) SendResetOTP(ctx context.Context, email, otp string, validity time.Duration) error {
	return n.deliver(ctx, email, "Password Reset OTP", n.reset, mailParams{Email: email, OTP: otp, Validity: humanDuration(validity)})
}

func (n *Notifier) deliver(ctx context.Context, to, subject string, tpl *template.Template, params mailParams) error {
	params.SiteName = n.siteName
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, params); err != nil {
		return appErr.Mail(err)
	}
	if err := n.sender.Send(to, subject, buf.String()); err != nil {
		logutil.GetLogger(ctx).Error("send mail failed", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return appErr.Mail(err)
	}
	logutil.GetLogger(ctx).Debug("mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return strconv.Itoa(hours) + " hours"
	case d >= time.Minute:
		minutes := int(d / time.Minute)
		if minutes == 1 {
			return "1 minute"
		}
		return strconv.Itoa(minutes) + " minutes"
	default:
		return d.String()
	}
}
