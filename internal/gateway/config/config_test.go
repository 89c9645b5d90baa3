package config

import (
	"testing"
	"time"
)

func TestResolveShutdownGrace(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"30s", 30 * time.Second},
		{"2m", 2 * time.Minute},
		{"not-a-duration", 5 * time.Second},
		{"-10s", 5 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("SHUTDOWN_GRACE", tc.raw)
		if got := resolveShutdownGrace(); got != tc.want {
			t.Fatalf("SHUTDOWN_GRACE=%q: got %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestLocalAuthSecretOnlyForLocal(t *testing.T) {
	if localAuthSecret("local") == "" {
		t.Fatalf("local env must get a development secret")
	}
	for _, env := range []string{"production", "staging", ""} {
		if s := localAuthSecret(env); s != "" {
			t.Fatalf("env %q must not get a fallback secret, got %q", env, s)
		}
	}
}
