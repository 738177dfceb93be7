package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	SetPipelineHooks(h)
	SetHTTPHooks(h)
	defer Reset()

	Pipeline().OnPlanComplete(ctx, "3", 11, 0, time.Millisecond)
	HTTP().OnError(ctx, "GET", "api.discogs.com", "/database/search", errors.New("connection refused"))

	out := buf.String()
	for _, want := range []string{"plan done", "variant=3", "placed=11", "http error", "connection refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheHit(context.Background(), "http")
	if buf.Len() != 0 {
		t.Errorf("debug events should be filtered at info level, got %q", buf.String())
	}
}
