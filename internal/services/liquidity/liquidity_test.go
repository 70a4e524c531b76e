package liquidity

import (
	"testing"

	"SwingRank/internal/testutil"
)

func TestFilter(t *testing.T) {
	f := NewFilter(20, 20, 1e7)
	if !f.Passes(testutil.Trending("X", 30, 100, 1, 200_000)) {
		t.Fatalf("liquid series should pass")
	}
	if f.Passes(testutil.Trending("X", 30, 100, 1, 1_000)) {
		t.Fatalf("thin turnover should fail")
	}
	if f.Passes(testutil.Trending("X", 30, 5, 0.1, 1e9)) {
		t.Fatalf("penny stock should fail")
	}
	if f.Passes(testutil.Trending("X", 10, 100, 1, 1e9)) {
		t.Fatalf("short history should fail")
	}
}
