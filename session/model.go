package session

// Session is the per-client session record. One exists per browser/client
// session; it is created on demand by the first flow that needs it.
type Session struct {
	SessionID  string
	IdentityID string

	// PendingVerification is set after a successful password login for a
	// face-enabled identity and cleared on match, skip, or exhaustion.
	PendingVerification bool

	// Verified means the second factor is satisfied for this session,
	// whether by a face match, an explicit skip, or a standalone face login.
	Verified bool

	VerifyAttempts uint16

	// Standalone face-login rate state. LastLoginAttempt is a unix
	// timestamp; the counter is logically zero once the window has passed.
	LoginAttempts    uint16
	LastLoginAttempt int64

	CreatedAt int64
	ExpiresAt int64
}
