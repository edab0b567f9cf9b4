package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/sophialabs/stubwire/internal/infrastructure/outbound/logging"
)

func TestSlogLogger_ForwardsLevelsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	l.Debug("debug msg", "k", "v")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg", "k=v", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}
