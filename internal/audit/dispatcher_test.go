package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestDispatcherDeliversEntries(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), Entry{ID: "1", Action: "enroll"})
	d.Emit(context.Background(), Entry{ID: "2", Action: "verify_success"})
	d.Close()

	var got []Entry
	for {
		select {
		case e := <-sink.Entries():
			got = append(got, e)
		default:
			if len(got) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(got))
			}
			if got[0].ID != "1" || got[1].ID != "2" {
				t.Fatalf("expected delivery in order, got %v", got)
			}
			return
		}
	}
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, nil)
	if d != nil {
		t.Fatal("disabled dispatcher must be nil")
	}

	// All methods must be safe on nil.
	d.Emit(context.Background(), Entry{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports zero drops")
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	// blockingSink never returns, so the buffer fills up.
	block := make(chan struct{})
	defer close(block)

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, blockingSink{block})

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Entry{Action: "verify_fail"})
	}

	deadline := time.After(time.Second)
	for d.Dropped() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected dropped entries with a full buffer")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

type blockingSink struct {
	block chan struct{}
}

func (s blockingSink) Emit(context.Context, Entry) {
	<-s.block
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	distance := 0.42
	sink.Emit(context.Background(), Entry{
		ID:         "abc",
		Action:     "verify_success",
		IdentityID: "u1",
		Distance:   &distance,
	})

	var decoded Entry
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if decoded.Action != "verify_success" || decoded.IdentityID != "u1" {
		t.Fatalf("unexpected entry: %+v", decoded)
	}
	if decoded.Distance == nil || *decoded.Distance != 0.42 {
		t.Fatal("expected distance to round-trip")
	}
	if buf.Bytes()[buf.Len()-1] != '\n' {
		t.Fatal("expected newline-terminated output")
	}
}
