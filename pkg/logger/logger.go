// Package logger builds the structured loggers used across the progress
// engine and provides domain-specific attribute constructors so that log
// fields stay consistently named between the coordinator, the remote client
// and the scheduler jobs.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Options configures the logger.
type Options struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// Level is the minimum level to emit.
	Level slog.Level

	// Format is "json" (default) or "text".
	Format string

	// AddSource includes the file:line of the log call.
	AddSource bool
}

// DefaultOptions returns sensible defaults for the logger.
func DefaultOptions() Options {
	return Options{
		Output: os.Stdout,
		Level:  slog.LevelInfo,
		Format: "json",
	}
}

// New creates a new *slog.Logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	}
	return slog.New(handler)
}

// Default creates a logger with default options.
func Default() *slog.Logger {
	return New(DefaultOptions())
}

// ParseLevel parses a string into a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Err creates an error attribute; nil errors log as null.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Any("error", nil)
	}
	return slog.String("error", err.Error())
}

// Progress-engine field constructors.
func UserID(id string) slog.Attr          { return slog.String("user_id", id) }
func Operation(name string) slog.Attr     { return slog.String("operation", name) }
func Component(name string) slog.Attr     { return slog.String("component", name) }
func XPAmount(xp int) slog.Attr           { return slog.Int("xp_amount", xp) }
func LevelNum(level int) slog.Attr        { return slog.Int("level", level) }
func StreakDays(days int) slog.Attr       { return slog.Int("streak_days", days) }
func MutationID(id string) slog.Attr      { return slog.String("mutation_id", id) }
func MutationKind(kind string) slog.Attr  { return slog.String("mutation_kind", kind) }
func Sequence(seq int64) slog.Attr        { return slog.Int64("sequence", seq) }
func SyncState(state string) slog.Attr    { return slog.String("sync_state", state) }
func QueueDepth(n int) slog.Attr          { return slog.Int("queue_depth", n) }
func AchievementID(id string) slog.Attr   { return slog.String("achievement_id", id) }
func ChallengeID(id string) slog.Attr     { return slog.String("challenge_id", id) }
func LanguageCode(code string) slog.Attr  { return slog.String("language_code", code) }
func Latency(d time.Duration) slog.Attr   { return slog.Duration("latency", d) }
func Attempt(n int) slog.Attr             { return slog.Int("attempt", n) }
func StatusCode(code int) slog.Attr       { return slog.Int("status_code", code) }
func ErrorKind(kind string) slog.Attr     { return slog.String("error_kind", kind) }
