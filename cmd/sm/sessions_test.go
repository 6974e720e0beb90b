package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a minimal config plus a seeded session log and
// returns the config path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sessions := filepath.Join(dir, "sessions.jsonl")
	log := `{"id":777,"name":"Олена","enterprise":12,"manager":111}
{"id":42,"name":"Ірина","enterprise":34,"manager":222}
`
	if err := os.WriteFile(sessions, []byte(log), 0o644); err != nil {
		t.Fatalf("write session log: %v", err)
	}

	cfgPath := filepath.Join(dir, "stationmaster.yaml")
	cfg := fmt.Sprintf(`
telegram:
  token: test-token
paths:
  sessions: %q
managers:
  default: 900
  admin: 902
directory:
  database: crm
`, sessions)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSessionsCmd_ListsClients(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "sessions", "-c", cfgPath)
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	for _, want := range []string{"777", "Олена", "42", "Ірина", "2 client(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionsCmd_ManagerFilter(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, "sessions", "-c", cfgPath, "-m", "111")
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if !strings.Contains(out, "Олена") {
		t.Errorf("output missing the manager's client:\n%s", out)
	}
	if strings.Contains(out, "Ірина") {
		t.Errorf("output leaked another manager's client:\n%s", out)
	}
}

func TestSessionsCmd_MissingConfig(t *testing.T) {
	_, err := runCommand(t, "sessions", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestSessionsCmd_EmptyLog(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "stationmaster.yaml")
	cfg := fmt.Sprintf(`
telegram:
  token: test-token
paths:
  sessions: %q
managers:
  default: 900
  admin: 902
directory:
  database: crm
`, filepath.Join(dir, "missing.jsonl"))
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := runCommand(t, "sessions", "-c", cfgPath)
	if err != nil {
		t.Fatalf("sessions failed: %v", err)
	}
	if !strings.Contains(out, "No registered clients.") {
		t.Errorf("output = %q", out)
	}
}
