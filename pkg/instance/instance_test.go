package instance

import "testing"

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv("XFINDS_INSTANCE_ID", "api-7")
	t.Setenv("DYNO", "web.1")
	if got := GetID("local"); got != "api-7" {
		t.Fatalf("expected explicit id, got %q", got)
	}
}

func TestGetIDFallsBackToDyno(t *testing.T) {
	t.Setenv("XFINDS_INSTANCE_ID", "")
	t.Setenv("DYNO", "web.1")
	if got := GetID("local"); got != "web.1" {
		t.Fatalf("expected dyno id, got %q", got)
	}
}
