package receipt_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nyashahama/strideshop-receipts/internal/receipt"
)

func TestID_UnmarshalStringsAndNumbers(t *testing.T) {
	var got struct {
		A receipt.ID `json:"a"`
		B receipt.ID `json:"b"`
		C receipt.ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"  O-1 ","b":1234,"c":null}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.A != "O-1" || got.B != "1234" || got.C != "" {
		t.Errorf("got %+v", got)
	}
}

func TestID_RejectsObjects(t *testing.T) {
	var id receipt.ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatal("expected an error for an object id")
	}
}

func TestParseReceiptID(t *testing.T) {
	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		if _, err := receipt.ParseReceiptID(bad); err == nil {
			t.Errorf("ParseReceiptID(%q): expected error", bad)
		}
	}
	id, err := receipt.ParseReceiptID("42")
	if err != nil || id != 42 {
		t.Errorf("ParseReceiptID(42): got %d, %v", id, err)
	}
}

func TestCentsFromAmount_RoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]int64{
		"25.50":  2550,
		"25.5":   2550,
		"1.005":  101,
		"2.675":  268,
		"0.004":  0,
		"-1.005": -101,
		"0.1":    10,
	}
	for in, want := range cases {
		got, err := receipt.CentsFromAmount(decimal.RequireFromString(in))
		if err != nil || got != want {
			t.Errorf("CentsFromAmount(%s) = %d, %v; want %d", in, got, err, want)
		}
	}

	if _, err := receipt.CentsFromAmount(decimal.RequireFromString("10000000000.00")); err == nil {
		t.Error("expected an error for an amount NUMERIC(12,2) cannot hold")
	}
}

func TestNumericRoundTrip(t *testing.T) {
	if got := receipt.NumericFromCents(2550); got != "25.50" {
		t.Errorf("NumericFromCents(2550) = %q", got)
	}
	if got := receipt.NumericFromCents(5); got != "0.05" {
		t.Errorf("NumericFromCents(5) = %q", got)
	}

	for in, want := range map[string]int64{"25.50": 2550, "25.5": 2550, "25": 2500, "0.05": 5, " 9.99 ": 999} {
		got, err := receipt.CentsFromNumeric(in)
		if err != nil || got != want {
			t.Errorf("CentsFromNumeric(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, bad := range []string{"1.234", "abc", ""} {
		if _, err := receipt.CentsFromNumeric(bad); err == nil {
			t.Errorf("CentsFromNumeric(%q): expected error", bad)
		}
	}
}

func TestDigester(t *testing.T) {
	d := receipt.NewDigester("k")

	if d.Digest(nil) != nil {
		t.Error("nil payment info should produce a nil digest")
	}
	if d.Digest(&receipt.PaymentInfo{}) != nil {
		t.Error("empty payment info should produce a nil digest")
	}

	a := d.Digest(&receipt.PaymentInfo{CardNumber: "4242-4242-4242-4242", ExpiryDate: "12/27", CVV: "999"})
	b := d.Digest(&receipt.PaymentInfo{CardNumber: "4242 4242 4242 4242", CVV: "111"})
	if a.Last4 != "4242" || a.Expiry != "12/27" {
		t.Errorf("digest: %+v", a)
	}
	if a.Fingerprint == "" || a.Fingerprint != b.Fingerprint {
		t.Error("same card should produce the same fingerprint")
	}
	if other := receipt.NewDigester("other").Digest(&receipt.PaymentInfo{CardNumber: "4242424242424242"}); other.Fingerprint == a.Fingerprint {
		t.Error("fingerprint should depend on the key")
	}

	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal digest: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal digest: %v", err)
	}
	if _, ok := m["cvv"]; ok {
		t.Error("digest must not carry the cvv")
	}
}
