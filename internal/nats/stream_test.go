package nats

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

func TestStreamManager_StreamConfig(t *testing.T) {
	tests := []struct {
		storage string
		want    jetstream.StorageType
	}{
		{storage: "memory", want: jetstream.MemoryStorage},
		{storage: "file", want: jetstream.FileStorage},
		{storage: "FILE", want: jetstream.FileStorage},
		{storage: "", want: jetstream.MemoryStorage},
	}

	for _, tt := range tests {
		t.Run(tt.storage, func(t *testing.T) {
			m := NewStreamManager(nil, StreamConfig{
				Name:     "NUMBER_WINDOWS",
				Subjects: []string{"numbers.>"},
				MaxAge:   time.Hour,
				Storage:  tt.storage,
				Replicas: 1,
			}, nil)

			cfg := m.streamConfig()
			if cfg.Storage != tt.want {
				t.Errorf("Storage = %v, want %v", cfg.Storage, tt.want)
			}
			if cfg.Discard != jetstream.DiscardOld {
				t.Errorf("Discard = %v, want DiscardOld", cfg.Discard)
			}
			if cfg.Name != "NUMBER_WINDOWS" || len(cfg.Subjects) != 1 {
				t.Errorf("unexpected stream config %+v", cfg)
			}
		})
	}
}
