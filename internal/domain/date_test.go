package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"shelfkeeper/internal/domain"
)

func TestDateScan(t *testing.T) {
	want := domain.NewDate(2024, time.January, 12)
	cases := []struct {
		name string
		src  any
		want domain.Date
	}{
		{"postgres date", time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), want},
		{"postgres timestamp keeps its day", time.Date(2024, 1, 12, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)), want},
		{"sqlite text", "2024-01-12", want},
		{"bytes", []byte("2024-01-12"), want},
		{"rfc3339 row", "2024-01-12T08:15:00Z", want},
		{"null", nil, domain.Date{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d domain.Date
			if err := d.Scan(tc.src); err != nil {
				t.Fatal(err)
			}
			if !d.Equal(tc.want.Time) {
				t.Fatalf("got %s, want %s", d, tc.want)
			}
		})
	}

	var d domain.Date
	if err := d.Scan(42); err == nil {
		t.Fatal("expected an error scanning an int")
	}
	if err := d.Scan("12/01/2024"); err == nil {
		t.Fatal("expected an error for a non-ISO date")
	}
}

func TestDateJSON(t *testing.T) {
	type row struct {
		Expiry domain.Date `json:"expiry"`
	}

	b, err := json.Marshal(row{Expiry: domain.NewDate(2024, time.February, 29)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"expiry":"2024-02-29"}` {
		t.Fatalf("got %s", b)
	}
	b, _ = json.Marshal(row{})
	if string(b) != `{"expiry":null}` {
		t.Fatalf("zero date: got %s", b)
	}

	for _, in := range []string{`{"expiry":null}`, `{"expiry":""}`} {
		r := row{Expiry: domain.NewDate(2024, 1, 1)}
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Fatal(err)
		}
		if !r.Expiry.IsZero() {
			t.Fatalf("%s: want zero date, got %s", in, r.Expiry)
		}
	}

	var r row
	if err := json.Unmarshal([]byte(`{"expiry":"2024-01-12"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Expiry.String() != "2024-01-12" {
		t.Fatalf("got %s", r.Expiry)
	}
	if err := json.Unmarshal([]byte(`{"expiry":"soon"}`), &r); err == nil {
		t.Fatal("expected an error for a bad date")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := domain.NewDate(2024, time.February, 28)
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Fatalf("AddDays: got %s", got)
	}
	if got := d.AddDays(-3).DaysSince(d); got != -3 {
		t.Fatalf("DaysSince: got %d", got)
	}
	if v, _ := (domain.Date{}).Value(); v != nil {
		t.Fatalf("zero date Value: got %v", v)
	}
	if v, _ := d.Value(); v != "2024-02-28" {
		t.Fatalf("Value: got %v", v)
	}
}
