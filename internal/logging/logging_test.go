package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nyashahama/strideshop-receipts/internal/logging"
)

func TestRedactEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "jo***@example.com",
		"ab@example.com":       "***@example.com",
		"not-an-email":         "***@***",
	}
	for in, want := range cases {
		if got := logging.RedactEmail(in); got != want {
			t.Errorf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew_ProductionIsJSONAndRedacts(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New("production", &buf)

	log.With("email", "buyer@example.com").Info("sent",
		"to", "other@example.com",
		"error", errors.New("550 mailbox buyer@example.com unavailable"),
		"receipt_id", 42,
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v\n%s", err, buf.String())
	}
	if rec["email"] != "bu***@example.com" {
		t.Errorf("email: got %v", rec["email"])
	}
	if rec["to"] != "ot***@example.com" {
		t.Errorf("to: got %v", rec["to"])
	}
	if rec["error"] != "550 mailbox bu***@example.com unavailable" {
		t.Errorf("error: got %v", rec["error"])
	}
	if rec["receipt_id"] != float64(42) {
		t.Errorf("receipt_id: got %v", rec["receipt_id"])
	}
}

func TestNew_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	logging.New("production", &buf).Debug("noise")
	if buf.Len() != 0 {
		t.Errorf("debug record written in production: %s", buf.String())
	}
}

func TestNew_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	logging.New("development", &buf).Debug("hello", "email", "jane@example.com")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") {
		t.Errorf("expected text handler output, got %q", out)
	}
	if strings.Contains(out, "jane@example.com") {
		t.Errorf("email not redacted: %q", out)
	}
}
