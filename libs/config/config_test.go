package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("TEST_INT", "12")
	if got := Int("TEST_INT", 5, 0, 100); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	t.Setenv("TEST_INT", "500")
	if got := Int("TEST_INT", 5, 0, 100); got != 5 {
		t.Fatalf("expected fallback for out of range value, got %d", got)
	}
	t.Setenv("TEST_INT", "abc")
	if got := Int("TEST_INT", 5, 0, 100); got != 5 {
		t.Fatalf("expected fallback for invalid value, got %d", got)
	}
}

func TestPort(t *testing.T) {
	t.Setenv("TEST_PORT", "70000")
	if _, err := Port("TEST_PORT", "8080"); err == nil {
		t.Fatal("expected error for invalid port")
	}
	t.Setenv("TEST_PORT", "")
	p, err := Port("TEST_PORT", "8080")
	if err != nil || p != "8080" {
		t.Fatalf("expected fallback port, got %q (%v)", p, err)
	}
}

func TestDurationAndBool(t *testing.T) {
	t.Setenv("TEST_POLL_MS", "250")
	if got := Duration("TEST_POLL_MS", time.Second, time.Millisecond); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", got)
	}
	t.Setenv("TEST_POLL_MS", "-1")
	if got := Duration("TEST_POLL_MS", time.Second, time.Millisecond); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}
	t.Setenv("TEST_FLAG", "Yes")
	if !Bool("TEST_FLAG", false) {
		t.Fatal("expected truthy")
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected list: %#v", got)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOTENV_A=file\nDOTENV_B=file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DOTENV_A", "env")
	t.Setenv("DOTENV_B", "")
	os.Unsetenv("DOTENV_B")
	t.Cleanup(func() { os.Unsetenv("DOTENV_B") })

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("DOTENV_A"); got != "env" {
		t.Fatalf("expected existing value to win, got %q", got)
	}
	if got := os.Getenv("DOTENV_B"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
}
