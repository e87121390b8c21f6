// Package authflow is the state machine behind the login and first-time
// activation screens. The flow is a pure reducer: Reduce consumes the
// current state and one event and returns the next state plus at most one
// effect (an API call or a session write) for the caller to execute. No
// rendering, no I/O — every transition is unit-testable on its own.
package authflow

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/ChrozaGaming/sbpappv2/pkg/client"
	"github.com/ChrozaGaming/sbpappv2/pkg/domain"
)

// Step is the position in the login/activation sequence. Transitions are
// driven only by backend responses, never by client-side guesses.
type Step int

const (
	StepEmail Step = iota
	StepPassword
	StepVerify
	StepSetPassword
	StepAuthenticated
)

func (s Step) String() string {
	switch s {
	case StepEmail:
		return "email"
	case StepPassword:
		return "password"
	case StepVerify:
		return "verify"
	case StepSetPassword:
		return "setpwd"
	case StepAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// User-facing messages. The backend's own message text, when present,
// takes precedence over the per-action fallbacks.
const (
	MsgInvalidEmail       = "Masukkan email yang valid"
	MsgEmailNotRegistered = "Email belum terdaftar. Hubungi admin untuk dibuatkan akun."
	MsgUnreachable        = "Tidak dapat menghubungi server."
	MsgCheckEmailFailed   = "Gagal memeriksa email"
	MsgLoginFailed        = "Login gagal"
	MsgVerifyFailed       = "Verifikasi lisensi gagal"
	MsgPasswordTooShort   = "Password minimal 6 karakter"
	MsgConfirmMismatch    = "Konfirmasi password tidak sama"
	MsgSavePasswordFailed = "Gagal menyimpan password"
)

// minPasswordLen is checked locally before the set-password call; the
// server enforces the same rule and remains the authority.
const minPasswordLen = 6

// emailPattern is a UX guard, not a security boundary: anything with a
// local part, an @ and a domain segment is allowed through.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Flow is the state of one traversal of the login/activation sequence.
// Credentials in flight (password, license key) are never stored here;
// they ride on the effects and are gone once the request resolves.
type Flow struct {
	Step  Step
	Email string
	Token string
	User  domain.User

	// Err is the message to surface on the current step, empty for none.
	Err string
	// Busy marks a request in flight; submissions are ignored until the
	// matching resolution event arrives.
	Busy bool
}

// New returns a flow at the initial email step.
func New() Flow {
	return Flow{Step: StepEmail}
}

// Event is something that happened: a form submission or the resolution
// of a previously requested effect.
type Event interface{ isEvent() }

type (
	// SubmitEmail is the email-step form submission.
	SubmitEmail struct{ Email string }
	// EmailChecked resolves a CheckEmail effect.
	EmailChecked struct {
		Exists bool
		Err    error
	}
	// ProbeResolved resolves a ProbeLicense effect (the empty-password
	// login used to detect the license-required branch).
	ProbeResolved struct {
		Outcome *client.LoginOutcome
		Err     error
	}
	// SubmitPassword is the password-step form submission.
	SubmitPassword struct{ Password string }
	// LoginResolved resolves a Login effect.
	LoginResolved struct {
		Outcome *client.LoginOutcome
		Err     error
	}
	// SubmitLicense is the license-key form submission.
	SubmitLicense struct{ Key string }
	// LicenseResolved resolves a VerifyLicense effect.
	LicenseResolved struct {
		Token string
		User  domain.User
		Err   error
	}
	// SubmitNewPassword is the set-password form submission.
	SubmitNewPassword struct{ Password, Confirm string }
	// PasswordSaved resolves a SetPassword effect.
	PasswordSaved struct{ Err error }
)

func (SubmitEmail) isEvent()       {}
func (EmailChecked) isEvent()      {}
func (ProbeResolved) isEvent()     {}
func (SubmitPassword) isEvent()    {}
func (LoginResolved) isEvent()     {}
func (SubmitLicense) isEvent()     {}
func (LicenseResolved) isEvent()   {}
func (SubmitNewPassword) isEvent() {}
func (PasswordSaved) isEvent()     {}

// Effect is work the caller must perform: an API call whose result comes
// back as the matching *Resolved event, or a session write.
type Effect interface{ isEffect() }

type (
	// CheckEmail asks the backend whether the address is registered.
	CheckEmail struct{ Email string }
	// ProbeLicense is a login with an empty password, issued only to
	// detect an unactivated account. The password is ignored server-side
	// in that branch.
	ProbeLicense struct{ Email string }
	// Login is a real credential submission.
	Login struct{ Email, Password string }
	// VerifyLicense exchanges the license key for a token.
	VerifyLicense struct{ Email, Key string }
	// SetPassword stores the chosen password under the flow's token.
	SetPassword struct{ Token, Password string }
	// PersistSession writes the session record. It is emitted before the
	// step that depends on it is entered.
	PersistSession struct{ Session domain.Session }
)

func (CheckEmail) isEffect()     {}
func (ProbeLicense) isEffect()   {}
func (Login) isEffect()          {}
func (VerifyLicense) isEffect()  {}
func (SetPassword) isEffect()    {}
func (PersistSession) isEffect() {}

// Reduce applies one event to the flow. It returns the next state and at
// most one effect. Unknown or out-of-order events leave the flow
// unchanged; submissions while Busy are ignored so a double keypress
// cannot issue duplicate requests.
func Reduce(f Flow, ev Event) (Flow, Effect) {
	switch ev := ev.(type) {
	case SubmitEmail:
		if f.Step != StepEmail || f.Busy {
			return f, nil
		}
		f.Err = ""
		email := strings.TrimSpace(ev.Email)
		if !emailPattern.MatchString(email) {
			f.Err = MsgInvalidEmail
			return f, nil
		}
		f.Email = email
		f.Busy = true
		return f, CheckEmail{Email: email}

	case EmailChecked:
		if f.Step != StepEmail {
			return f, nil
		}
		if ev.Err != nil {
			f.Busy = false
			f.Err = errorMessage(ev.Err, MsgCheckEmailFailed)
			return f, nil
		}
		if !ev.Exists {
			f.Busy = false
			f.Err = MsgEmailNotRegistered
			return f, nil
		}
		// Registered: probe for the license-required branch before
		// showing the password step.
		return f, ProbeLicense{Email: f.Email}

	case ProbeResolved:
		if f.Step != StepEmail {
			return f, nil
		}
		f.Busy = false
		if ev.Err != nil {
			f.Err = errorMessage(ev.Err, MsgLoginFailed)
			return f, nil
		}
		switch ev.Outcome.Kind {
		case client.LoginLicenseRequired:
			f.Step = StepVerify
			return f, nil
		case client.LoginAuthenticated:
			// Backend accepted the empty password. Unexpected but not
			// worth fighting: treat like any successful login.
			return authenticated(f, ev.Outcome.Token, ev.Outcome.User)
		default:
			// Rejected means a normal, activated account.
			f.Step = StepPassword
			return f, nil
		}

	case SubmitPassword:
		if f.Step != StepPassword || f.Busy {
			return f, nil
		}
		f.Err = ""
		f.Busy = true
		return f, Login{Email: f.Email, Password: ev.Password}

	case LoginResolved:
		if f.Step != StepPassword {
			return f, nil
		}
		f.Busy = false
		if ev.Err != nil {
			f.Err = errorMessage(ev.Err, MsgLoginFailed)
			return f, nil
		}
		switch ev.Outcome.Kind {
		case client.LoginAuthenticated:
			return authenticated(f, ev.Outcome.Token, ev.Outcome.User)
		case client.LoginLicenseRequired:
			f.Step = StepVerify
			return f, nil
		default:
			f.Err = ev.Outcome.Message
			if f.Err == "" {
				f.Err = MsgLoginFailed
			}
			return f, nil
		}

	case SubmitLicense:
		if f.Step != StepVerify || f.Busy {
			return f, nil
		}
		f.Err = ""
		f.Busy = true
		return f, VerifyLicense{Email: f.Email, Key: strings.TrimSpace(ev.Key)}

	case LicenseResolved:
		if f.Step != StepVerify {
			return f, nil
		}
		f.Busy = false
		if ev.Err != nil {
			f.Err = errorMessage(ev.Err, MsgVerifyFailed)
			return f, nil
		}
		f.Token = ev.Token
		f.User = ev.User
		f.Step = StepSetPassword
		return f, PersistSession{Session: domain.Session{
			Token:      ev.Token,
			User:       ev.User,
			LoggedInAt: time.Now(),
		}}

	case SubmitNewPassword:
		if f.Step != StepSetPassword || f.Busy {
			return f, nil
		}
		f.Err = ""
		if len(ev.Password) < minPasswordLen {
			f.Err = MsgPasswordTooShort
			return f, nil
		}
		if ev.Password != ev.Confirm {
			f.Err = MsgConfirmMismatch
			return f, nil
		}
		f.Busy = true
		return f, SetPassword{Token: f.Token, Password: ev.Password}

	case PasswordSaved:
		if f.Step != StepSetPassword {
			return f, nil
		}
		f.Busy = false
		if ev.Err != nil {
			f.Err = errorMessage(ev.Err, MsgSavePasswordFailed)
			return f, nil
		}
		f.Step = StepAuthenticated
		return f, nil
	}

	return f, nil
}

// authenticated records the credentials and emits the session write. The
// persist effect is produced before the caller can observe the
// authenticated step, so a session always exists by the time the
// protected area is entered.
func authenticated(f Flow, token string, user domain.User) (Flow, Effect) {
	f.Token = token
	f.User = user
	f.Step = StepAuthenticated
	return f, PersistSession{Session: domain.Session{
		Token:      token,
		User:       user,
		LoggedInAt: time.Now(),
	}}
}

// errorMessage maps an effect error to the text shown on the current
// step: the unreachable-server message for transport failures, the
// backend's own message when it sent one, the per-action fallback
// otherwise.
func errorMessage(err error, fallback string) string {
	if client.IsUnreachable(err) {
		return MsgUnreachable
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
