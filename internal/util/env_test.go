package util

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SG_STRING", "value")
	t.Setenv("SG_EMPTY", "")
	t.Setenv("SG_INT", "42")
	t.Setenv("SG_FLOAT", "2.5")
	t.Setenv("SG_BAD", "abc")
	t.Setenv("SG_BOOL", "true")
	t.Setenv("SG_DURATION", "90s")
	t.Setenv("SG_NEG_DURATION", "-5s")

	if got := GetEnv("SG_STRING"); got != "value" {
		t.Fatalf("GetEnv: got %q", got)
	}
	if got := GetEnv("SG_MISSING"); got != "" {
		t.Fatalf("GetEnv missing: got %q", got)
	}
	if got := GetEnvString("SG_EMPTY", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString empty: got %q", got)
	}
	if got := GetEnvInt("SG_INT", 1); got != 42 {
		t.Fatalf("GetEnvInt: got %d", got)
	}
	if got := GetEnvInt("SG_FLOAT", 1); got != 1 {
		t.Fatalf("GetEnvInt float: got %d", got)
	}
	if got := GetEnvNumeric("SG_FLOAT", 1); got != 2.5 {
		t.Fatalf("GetEnvNumeric: got %v", got)
	}
	if got := GetEnvNumeric("SG_BAD", 7); got != 7 {
		t.Fatalf("GetEnvNumeric bad: got %v", got)
	}
	if got := GetEnvBool("SG_BOOL", false); !got {
		t.Fatal("GetEnvBool: got false")
	}
	if got := GetEnvBool("SG_BAD", true); !got {
		t.Fatal("GetEnvBool bad: got false")
	}
	if got := GetEnvDuration("SG_DURATION", time.Second); got != 90*time.Second {
		t.Fatalf("GetEnvDuration: got %v", got)
	}
	if got := GetEnvDuration("SG_NEG_DURATION", time.Second); got != time.Second {
		t.Fatalf("GetEnvDuration negative: got %v", got)
	}
	if got := GetEnvDuration("SG_BAD", time.Minute); got != time.Minute {
		t.Fatalf("GetEnvDuration bad: got %v", got)
	}
}
