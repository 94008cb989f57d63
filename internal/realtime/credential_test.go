package realtime

import "testing"

func TestParseCredential(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		token string
		form  CredentialForm
	}{
		{"bare token", "eyJhbGciOiJIUzI1NiJ9.payload.sig", "eyJhbGciOiJIUzI1NiJ9.payload.sig", CredentialBare},
		{"bare token with whitespace", "  tok-123\n", "tok-123", CredentialBare},
		{"auth envelope", `{"type":"auth","token":"tok-456"}`, "tok-456", CredentialEnvelope},
		{"envelope without token", `{"type":"auth"}`, "", CredentialEnvelope},
		{"empty message", "", "", CredentialBare},
		{"json array", `["tok"]`, "", CredentialMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, form := ParseCredential([]byte(tc.raw))
			if token != tc.token {
				t.Fatalf("token = %q, want %q", token, tc.token)
			}
			if form != tc.form {
				t.Fatalf("form = %d, want %d", form, tc.form)
			}
		})
	}
}
