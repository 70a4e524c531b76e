package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok || got.Day() != 1 || got.Month() != time.March {
		t.Fatalf("unexpected %v ok=%v", got, ok)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	got := ParseTimeDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestWeekStart(t *testing.T) {
	// 2024-10-13 is a Sunday, 2024-10-07 the Monday of that week.
	sun := time.Date(2024, 10, 13, 15, 0, 0, 0, time.UTC)
	if got := WeekStart(sun); FormatDay(got) != "2024-10-07" {
		t.Fatalf("WeekStart(sunday)=%s", FormatDay(got))
	}
	mon := time.Date(2024, 10, 14, 0, 0, 0, 0, time.UTC)
	if got := WeekStart(mon); !got.Equal(mon) {
		t.Fatalf("WeekStart(monday)=%s", FormatDay(got))
	}
}
