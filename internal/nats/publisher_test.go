package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
)

// fakeJetStream records published messages.
type fakeJetStream struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, data []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return &jetstream.PubAck{Stream: "NUMBER_WINDOWS", Sequence: uint64(len(f.subjects))}, nil
}

func TestDeriveSubject(t *testing.T) {
	tests := []struct {
		name     string
		event    *MergeEvent
		expected string
	}{
		{name: "primes", event: &MergeEvent{Identifier: "p"}, expected: "numbers.merged.primes"},
		{name: "fibonacci", event: &MergeEvent{Identifier: "f"}, expected: "numbers.merged.fibonacci"},
		{name: "even", event: &MergeEvent{Identifier: "e"}, expected: "numbers.merged.even"},
		{name: "random", event: &MergeEvent{Identifier: "r"}, expected: "numbers.merged.random"},
		{name: "explicit category wins", event: &MergeEvent{Identifier: "p", Category: "Custom Set"}, expected: "numbers.merged.custom_set"},
		{name: "unknown identifier", event: &MergeEvent{Identifier: "z"}, expected: "numbers.merged.unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveSubject(tt.event); got != tt.expected {
				t.Errorf("DeriveSubject() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPublishMerge_EnrichesAndEncodes(t *testing.T) {
	js := &fakeJetStream{}
	publisher := NewPublisher(js, 0, nil, nil)

	evt := &MergeEvent{
		Identifier: "p",
		Fetched:    []float64{2, 3},
		Previous:   []float64{},
		Current:    []float64{2, 3},
		Novel:      []float64{2, 3},
		Avg:        "2.50",
	}

	if err := publisher.PublishMerge(context.Background(), evt); err != nil {
		t.Fatalf("PublishMerge() error = %v", err)
	}

	if evt.ID == "" {
		t.Error("event ID was not generated")
	}
	if evt.TimestampMs == 0 {
		t.Error("event timestamp was not set")
	}
	if len(js.subjects) != 1 || js.subjects[0] != "numbers.merged.primes" {
		t.Fatalf("subjects = %v, want [numbers.merged.primes]", js.subjects)
	}

	var decoded map[string]any
	if err := json.Unmarshal(js.payloads[0], &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	for _, key := range []string{"id", "identifier", "category", "numbers", "windowPrevState", "windowCurrState", "novel", "avg", "timestamp_ms"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("payload missing %q", key)
		}
	}
	if decoded["avg"] != "2.50" {
		t.Errorf("avg = %v, want 2.50", decoded["avg"])
	}
}

func TestPublishMerge_KeepsExistingID(t *testing.T) {
	js := &fakeJetStream{}
	publisher := NewPublisher(js, 0, nil, nil)

	evt := &MergeEvent{ID: "fixed-id", Identifier: "e", TimestampMs: 42}
	if err := publisher.PublishMerge(context.Background(), evt); err != nil {
		t.Fatalf("PublishMerge() error = %v", err)
	}
	if evt.ID != "fixed-id" || evt.TimestampMs != 42 {
		t.Errorf("event was overwritten: %+v", evt)
	}
}

func TestPublishMerge_Errors(t *testing.T) {
	publishErr := errors.New("no responders")
	publisher := NewPublisher(&fakeJetStream{err: publishErr}, 0, nil, nil)

	err := publisher.PublishMerge(context.Background(), &MergeEvent{Identifier: "r"})
	if !errors.Is(err, publishErr) {
		t.Errorf("PublishMerge() error = %v, want wrapped %v", err, publishErr)
	}

	if err := publisher.PublishMerge(context.Background(), nil); !errors.Is(err, ErrNilEvent) {
		t.Errorf("PublishMerge(nil) error = %v, want ErrNilEvent", err)
	}
}
