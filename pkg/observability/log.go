package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a debug line to a structured logger.
// It implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnFetchStart(_ context.Context, source, username string) {
	h.logger.Debug("fetch start", "source", source, "user", username)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, source, username string, items int, d time.Duration, err error) {
	h.logger.Debug("fetch done", "source", source, "user", username, "items", items, "duration", d, "err", err)
}

func (h *LogHooks) OnArrangeComplete(_ context.Context, metric string, kept, dropped int, d time.Duration, err error) {
	h.logger.Debug("arrange done", "metric", metric, "kept", kept, "dropped", dropped, "duration", d, "err", err)
}

func (h *LogHooks) OnPlanComplete(_ context.Context, variant string, placed, dropped int, d time.Duration) {
	h.logger.Debug("plan done", "variant", variant, "placed", placed, "dropped", dropped, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, format string, tiles int) {
	h.logger.Debug("render start", "format", format, "tiles", tiles)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, format string, bytes int, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "bytes", bytes, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
