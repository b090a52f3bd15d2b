package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("XFINDS_ENV_TEST", "value")
	if got := Get("XFINDS_ENV_TEST", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
	t.Setenv("XFINDS_ENV_TEST", "")
	if got := Get("XFINDS_ENV_TEST", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetTrimsBlankValues(t *testing.T) {
	t.Setenv("XFINDS_ENV_TEST", "   ")
	if got := Get("XFINDS_ENV_TEST", "fallback"); got != "fallback" {
		t.Fatalf("expected blank value to fall back, got %q", got)
	}
	t.Setenv("XFINDS_ENV_TEST", " 8080\n")
	if got := Get("XFINDS_ENV_TEST", "fallback"); got != "8080" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}
