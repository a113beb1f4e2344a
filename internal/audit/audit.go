package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Entry is the canonical audit record model. One entry is written per
// terminal decision and is never updated afterwards.
type Entry struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Action     string            `json:"action"`
	IdentityID string            `json:"identity_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	IP         string            `json:"ip,omitempty"`
	Distance   *float64          `json:"distance,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted audit entries.
type Sink interface {
	Emit(ctx context.Context, entry Entry)
}

// NoOpSink drops audit entries.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Entry) {}

// ChannelSink writes audit entries into a buffered channel.
type ChannelSink struct {
	entries chan Entry
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		entries: make(chan Entry, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, entry Entry) {
	select {
	case s.entries <- entry:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Entries() <-chan Entry {
	return s.entries
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, entry Entry) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
