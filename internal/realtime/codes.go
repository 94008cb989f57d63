package realtime

// Close codes sent during or after the handshake. Clients branch on these:
// 4000/4001 mean re-authenticate, 4003 means access was revoked, 4004 means
// the list no longer exists.
const (
	CloseMissingCredential = 4000
	CloseInvalidCredential = 4001
	CloseForbidden         = 4003
	CloseNotFound          = 4004

	// CloseGoingAway mirrors the standard 1001 code, used when the server
	// reclaims a dead or unresponsive peer.
	CloseGoingAway = 1001
)
