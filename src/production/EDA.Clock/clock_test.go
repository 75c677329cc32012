package clock

import (
	"testing"
	"time"
)

func TestNowInKeepsInstant(t *testing.T) {
	utc := time.Date(2024, 3, 10, 21, 30, 0, 0, time.UTC)

	got := NowIn(utc, DefaultZoneName, DefaultOffset)

	if !got.Equal(utc) {
		t.Fatalf("expected same instant, got %v", got)
	}
	if got.Hour() != 0 || got.Day() != 11 {
		t.Fatalf("expected 00:30 on the 11th in EAT, got %v", got)
	}
	name, offset := got.Zone()
	if name != "EAT" || offset != 3*60*60 {
		t.Fatalf("expected EAT +10800, got %s %d", name, offset)
	}
}

func TestEATClockOffset(t *testing.T) {
	before := time.Now()
	got := EAT()()
	after := time.Now()

	if _, offset := got.Zone(); offset != 10800 {
		t.Fatalf("expected offset 10800, got %d", offset)
	}
	if got.Before(before) || got.After(after) {
		t.Fatalf("expected %v to fall between %v and %v", got, before, after)
	}
}

func TestInZoneUsesConfiguredName(t *testing.T) {
	got := InZone("MSK", 3*time.Hour)()

	name, offset := got.Zone()
	if name != "MSK" || offset != 10800 {
		t.Fatalf("expected MSK +10800, got %s %d", name, offset)
	}
}

func TestFixedClock(t *testing.T) {
	pinned := time.Date(2025, 1, 1, 12, 0, 0, 0, FixedZone("EAT", DefaultOffset))
	c := Fixed(pinned)

	if !c().Equal(pinned) || !c().Equal(pinned) {
		t.Fatal("expected fixed clock to always return the pinned time")
	}
}
