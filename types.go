package faceid

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/edunex/faceid/internal/audit"
	"github.com/edunex/faceid/internal/match"
	"github.com/edunex/faceid/token"
)

// VectorLength is the fixed dimensionality of a face descriptor.
const VectorLength = match.VectorLength

// Descriptor is a fixed-length face feature vector. Values arriving from the
// wire are converted through validation; a Descriptor in hand is always
// structurally valid.
type Descriptor = match.Descriptor

// IdentityRecord is the face-related view of an authenticatable principal.
// The host account system owns identities; this subsystem reads and writes
// only the fields below.
type IdentityRecord struct {
	IdentityID  string
	Active      bool
	FaceEnabled bool
	Descriptors []Descriptor
	EnrolledAt  int64
}

// IdentityProvider is the interface callers implement to integrate faceid
// with their user database. FindEnabledActive feeds the 1:N login candidate
// set; SetDescriptors is a full overwrite, never an append.
type IdentityProvider interface {
	GetIdentity(ctx context.Context, identityID string) (IdentityRecord, error)
	FindEnabledActive(ctx context.Context) ([]IdentityRecord, error)
	GetDescriptors(ctx context.Context, identityID string) ([]Descriptor, error)
	SetDescriptors(ctx context.Context, identityID string, descriptors []Descriptor) error
	SetFaceEnabled(ctx context.Context, identityID string, enabled bool, enrolledAt time.Time) error
}

// VerifyResult is returned by [Engine.Verify]. It never carries the computed
// distance; that is recorded only in the audit trail.
type VerifyResult struct {
	Matched        bool
	AttemptsLeft   int
	RedirectToSkip bool
}

// VerificationState is returned by [Engine.VerificationPending] so hosts can
// gate routes while a 2FA step is outstanding and render the attempts counter.
type VerificationState struct {
	Pending      bool
	Verified     bool
	AttemptsLeft int
}

// FaceLoginResult is returned by [Engine.FaceLogin]. IdentityID and
// AccessToken are set only on a confident match; a failed attempt exposes
// nothing about which identity was closest.
type FaceLoginResult struct {
	Matched      bool
	IdentityID   string
	AttemptsLeft int
	AccessToken  string
}

// TokenClaims is the payload of an access token issued after a successful
// standalone face login.
type TokenClaims = token.Claims

// AuditEntry is the immutable audit record emitted once per terminal
// decision.
type AuditEntry = internalaudit.Entry

// AuditSink receives [AuditEntry] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all entries.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded entries to an
// [io.Writer], one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
