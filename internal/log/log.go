package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, zerolog.InfoLevel)
)

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Init configures the process logger. pretty switches to console output.
func Init(level string, pretty bool, w io.Writer) {
	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	mu.Lock()
	logger = newLogger(w, lvl)
	mu.Unlock()
}

// SetOutput redirects JSON output, keeping the current level.
func SetOutput(w io.Writer) {
	mu.Lock()
	logger = newLogger(w, logger.GetLevel())
	mu.Unlock()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

func write(ev *zerolog.Event, kind string, c *fiber.Ctx, action string, err error, fields map[string]any) {
	ev = ev.Str("action", action)
	if kind != "" {
		ev = ev.Str("kind", kind)
	}
	if c != nil {
		ev = ev.Str("ip", c.IP()).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			ev = ev.Str("req_id", rid)
		}
		if uid, ok := c.Locals("user_id").(string); ok && uid != "" {
			ev = ev.Str("user_id", uid)
		}
	}
	if err != nil {
		ev = ev.Err(err)
	}
	if len(fields) > 0 {
		ev = ev.Interface("fields", fields)
	}
	ev.Send()
}

func Debug(c *fiber.Ctx, action string, fields map[string]any) {
	write(current().Debug(), "", c, action, nil, fields)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(current().Info(), "", c, action, nil, fields)
}

func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(current().Info(), "audit", c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(current().Warn(), "security", c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(current().Error(), "", c, action, err, fields)
}

// Fatal logs and exits. Startup only.
func Fatal(action string, err error, fields map[string]any) {
	write(current().WithLevel(zerolog.FatalLevel), "", nil, action, err, fields)
	os.Exit(1)
}
