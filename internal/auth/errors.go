package auth

// DenyReason says why a token was rejected. Handlers keep the outward message
// deliberately vague; the reason exists for logging and for the one case that
// gets its own response (a refresh token offered where an access token is
// required, and vice versa).
type DenyReason int

const (
	ReasonMalformed DenyReason = iota + 1
	ReasonExpired
	ReasonWrongKind
	ReasonUnknownSubject
)

// AuthError is the typed rejection returned by Resolver and Refresher.
// Infrastructure faults (store unreachable, signing misconfiguration) are
// ordinary errors and are never wrapped in an AuthError.
type AuthError struct {
	Reason DenyReason
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case ReasonExpired:
		return "auth: token expired"
	case ReasonWrongKind:
		return "auth: wrong token type"
	case ReasonUnknownSubject:
		return "auth: unknown subject"
	default:
		return "auth: token malformed"
	}
}

func deny(r DenyReason) *AuthError { return &AuthError{Reason: r} }
