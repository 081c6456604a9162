// Package logging builds the process logger: JSON in production, text
// otherwise, with email addresses masked in every record.
package logging

import (
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// New returns a logger for env writing to w.
func New(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: redactAttr,
	}
	if env == "production" {
		opts.Level = slog.LevelInfo
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" → "jo***@example.com"
// Short local parts (≤2 chars) are fully masked: "ab@example.com" → "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
	case slog.KindAny:
		// errors carry addresses in SMTP replies
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, emailRegex.ReplaceAllStringFunc(err.Error(), RedactEmail))
		}
		return a
	default:
		return a
	}

	key := strings.ToLower(a.Key)
	val := a.Value.String()
	if val == "" {
		return a
	}
	if strings.Contains(key, "email") || key == "to" {
		return slog.String(a.Key, RedactEmail(val))
	}
	return slog.String(a.Key, emailRegex.ReplaceAllStringFunc(val, RedactEmail))
}
