package cli

import (
	"bytes"
	"path/filepath"
	"testing"
)

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	if _, err := executeCommand("--help"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"format", "db", "server"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to exist", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	root := NewRootCmd()

	want := map[string]bool{
		"serve": false, "list": false, "show": false, "clients": false,
		"showings": false, "actions": false, "login": false, "logout": false,
		"status": false, "user": false, "clear": false, "version": false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = out // version prints to stdout directly
}

func TestClearRefusesWithoutYes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if _, err := executeCommand("clear", "--db", dbPath); err == nil {
		t.Fatal("expected error without --yes")
	}
}

func TestClearWithYes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if _, err := executeCommand("clear", "--db", dbPath, "--yes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListAgainstEmptyDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if _, err := executeCommand("list", "--db", dbPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestShowMissingProperty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if _, err := executeCommand("show", "OBJ-404", "--db", dbPath); err == nil {
		t.Fatal("expected error for missing property")
	}
}

func TestUserListIncludesSeeded(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	if _, err := executeCommand("user", "list", "--db", dbPath, "--format", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
