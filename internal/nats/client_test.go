package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

type fakeConn struct {
	status  nats.Status
	drained bool
	closed  bool
}

func (f *fakeConn) Status() nats.Status { return f.status }
func (f *fakeConn) Drain() error        { f.drained = true; return nil }
func (f *fakeConn) Close()              { f.closed = true }

// fakeStreamLookup answers Stream lookups; every other JetStream method
// panics through the nil embedded interface.
type fakeStreamLookup struct {
	jetstream.JetStream
	looked []string
	err    error
}

func (f *fakeStreamLookup) Stream(_ context.Context, name string) (jetstream.Stream, error) {
	f.looked = append(f.looked, name)
	return nil, f.err
}

func TestClient_HealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  nats.Status
		lookErr error
		wantErr error
	}{
		{name: "ready", status: nats.CONNECTED},
		{name: "reconnecting", status: nats.RECONNECTING, wantErr: ErrNotConnected},
		{name: "closed", status: nats.CLOSED, wantErr: ErrNotConnected},
		{name: "stream missing", status: nats.CONNECTED, lookErr: jetstream.ErrStreamNotFound, wantErr: ErrStreamMissing},
		{name: "lookup failure", status: nats.CONNECTED, lookErr: errors.New("timeout"), wantErr: errAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js := &fakeStreamLookup{err: tt.lookErr}
			client := &Client{
				conn:   &fakeConn{status: tt.status},
				js:     js,
				stream: "NUMBER_WINDOWS",
			}

			err := client.HealthCheck(context.Background())
			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("HealthCheck() error = %v, want nil", err)
			case tt.wantErr == errAny && err == nil:
				t.Fatal("HealthCheck() error = nil, want an error")
			case tt.wantErr != nil && tt.wantErr != errAny && !errors.Is(err, tt.wantErr):
				t.Fatalf("HealthCheck() error = %v, want %v", err, tt.wantErr)
			}

			if tt.status == nats.CONNECTED && (len(js.looked) != 1 || js.looked[0] != "NUMBER_WINDOWS") {
				t.Errorf("stream lookups = %v, want [NUMBER_WINDOWS]", js.looked)
			}
			if tt.status != nats.CONNECTED && len(js.looked) != 0 {
				t.Errorf("stream looked up while disconnected: %v", js.looked)
			}
		})
	}
}

// errAny marks cases where any non-nil error is acceptable.
var errAny = errors.New("any error")

func TestClient_DrainAndClose(t *testing.T) {
	conn := &fakeConn{status: nats.CONNECTED}
	client := &Client{conn: conn}

	if err := client.Drain(); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	client.Close()

	if !conn.drained || !conn.closed {
		t.Errorf("drained = %v, closed = %v, want both true", conn.drained, conn.closed)
	}
}
