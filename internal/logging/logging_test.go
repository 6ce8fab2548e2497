package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestFromContextRoundTrip(t *testing.T) {
	l := New(slog.LevelDebug)
	ctx := NewContext(context.Background(), l)
	if FromContext(ctx) != l {
		t.Error("expected the stored logger back")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("expected a usable logger for a bare context")
	}
}
