package dedup

import (
	"context"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "disabled ignores bad values", mutate: func(c *Config) { c.Enabled = false; c.Window = 0 }},
		{name: "zero window", mutate: func(c *Config) { c.Window = 0 }, wantErr: true},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantErr: true},
		{name: "fp rate too high", mutate: func(c *Config) { c.FPRate = 1 }, wantErr: true},
		{name: "fp rate zero", mutate: func(c *Config) { c.FPRate = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModule_Novel(t *testing.T) {
	m := New(Config{Enabled: true, Window: time.Minute, Capacity: 1000, FPRate: 0.001}, nil, nil)
	ctx := context.Background()

	if got := m.Novel(ctx, []float64{4, 6}); len(got) != 2 {
		t.Errorf("first Novel() = %v, want 2 values", got)
	}
	if got := m.Novel(ctx, []float64{4, 6}); len(got) != 0 {
		t.Errorf("second Novel() = %v, want none", got)
	}
}
