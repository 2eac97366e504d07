package role

import (
	"context"
	"testing"
	"time"
)

func TestArbitrate(t *testing.T) {
	closed := make(chan struct{})
	close(closed)

	late := make(chan struct{})
	go func() {
		time.Sleep(200 * time.Millisecond)
		close(late)
	}()

	tests := []struct {
		name    string
		ready   <-chan struct{}
		timeout time.Duration
		want    Role
	}{
		{"ready", closed, 200 * time.Millisecond, Primary},
		{"never ready", make(chan struct{}), 10 * time.Millisecond, Satellite},
		{"ready too late", late, 20 * time.Millisecond, Satellite},
		{"nil channel", nil, 10 * time.Millisecond, Satellite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Arbitrate(context.Background(), tt.ready, tt.timeout); got != tt.want {
				t.Fatalf("Arbitrate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArbitrateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := Arbitrate(ctx, make(chan struct{}), time.Hour); got != Satellite {
		t.Fatalf("Arbitrate() = %v, want %v", got, Satellite)
	}
}
