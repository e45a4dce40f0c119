package instance

import "testing"

func TestIDPrefersDyno(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("HOSTNAME", "box")
	if got := ID(); got != "web.1" {
		t.Fatalf("expected web.1 got %s", got)
	}
}

func TestIDFallsBack(t *testing.T) {
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "")
	if got := ID(); got != "local" {
		t.Fatalf("expected local got %s", got)
	}
}
