package auth

import "context"

// TokenValidator checks an opaque token with the identity service and
// returns the validated subject. Any error means the token is not valid.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (subject string, err error)
}

// Verdict is the single outcome of verifying a Session: either
// Authenticated or Unauthenticated.
type Verdict interface {
	verdict()
}

// Authenticated is a session whose token validated and whose subject equals
// the user-id cookie.
type Authenticated struct {
	Subject string
}

// Reason explains an Unauthenticated verdict.
type Reason string

const (
	ReasonNoToken      Reason = "no_token"
	ReasonInvalidToken Reason = "invalid_token"
	ReasonNoSubject    Reason = "no_subject"
	ReasonMismatch     Reason = "subject_mismatch"
)

// Unauthenticated is every other outcome. Err carries the validator error
// for ReasonInvalidToken.
type Unauthenticated struct {
	Reason Reason
	Err    error
}

func (Authenticated) verdict()   {}
func (Unauthenticated) verdict() {}

// Verify validates s.Token with v and checks the validated subject against
// s.UserID. Validator errors of any kind fail closed.
func Verify(ctx context.Context, v TokenValidator, s Session) Verdict {
	if !s.HasToken() {
		return Unauthenticated{Reason: ReasonNoToken}
	}
	subject, err := v.ValidateToken(ctx, s.Token)
	if err != nil {
		return Unauthenticated{Reason: ReasonInvalidToken, Err: err}
	}
	if subject == "" {
		return Unauthenticated{Reason: ReasonNoSubject}
	}
	if subject != s.UserID {
		return Unauthenticated{Reason: ReasonMismatch}
	}
	return Authenticated{Subject: subject}
}
