package services

import (
	"io"
	"log/slog"
	"testing"

	"github.com/srrathi/cyberplace-be/internal/realtime"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestNotifier returns a Notifier wired to a started hub with no
// connected clients; broadcasts succeed and go nowhere.
func newTestNotifier(t *testing.T) *realtime.Notifier {
	t.Helper()
	hub := realtime.NewHub("test-server", discardLogger())
	if err := hub.Start(); err != nil {
		t.Fatalf("hub start: %v", err)
	}
	t.Cleanup(hub.Stop)
	return realtime.NewNotifier(hub.Dispatcher())
}
