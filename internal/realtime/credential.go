package realtime

import (
	"encoding/json"
	"strings"
)

// CredentialForm tags how a first-message credential was presented.
type CredentialForm int

const (
	// CredentialBare is a raw token sent as the whole first message.
	CredentialBare CredentialForm = iota
	// CredentialEnvelope is the {"type":"auth","token":"..."} form.
	CredentialEnvelope
	// CredentialMalformed is valid JSON that is not an auth envelope.
	CredentialMalformed
)

type authEnvelope struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ParseCredential extracts a bearer token from the first payload message.
// Both forms are supported for backward compatibility with clients that
// deliver tokens out of band: a bare token string, or a JSON envelope. The
// forms are tried in a fixed order; the result is tagged so callers can
// distinguish an empty envelope token from a malformed message.
func ParseCredential(raw []byte) (string, CredentialForm) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return "", CredentialBare
	}

	if json.Valid([]byte(trimmed)) {
		var env authEnvelope
		if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
			// Valid JSON but not an object (array, number, ...).
			return "", CredentialMalformed
		}
		return env.Token, CredentialEnvelope
	}

	return trimmed, CredentialBare
}
