package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the CLI against the database at dbPath.
func run(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "none.env"), "--db", dbPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedListInquiry(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.sqlite3")

	out, err := run(t, dbPath, "", "seed", "../../testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("seed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Added 8 items") {
		t.Errorf("unexpected seed output:\n%s", out)
	}

	out, err = run(t, dbPath, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Eletrônicos (2)", "Periféricos (2)", "Câmera Vintage", "R$ 129,99", "À Venda", "Descarte"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, dbPath, "", "inquiry", "1", "7")
	if err != nil {
		t.Fatalf("inquiry: %v", err)
	}
	for _, want := range []string{
		"2 selected, total R$ 153,99",
		"* R$ 129,99 (ID: 1) Câmera Vintage",
		"* R$ 24,00 (ID: 7) Caneca de Cerâmica",
		"Total: R$ 153,99",
		"https://wa.me/?text=",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("inquiry output missing %q:\n%s", want, out)
		}
	}
}

func TestAddEditDelete(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.sqlite3")

	out, err := run(t, dbPath, "", "add", "--name", "Caneca", "--price", "5,50",
		"--description", "Azul", "--category", "Cozinha", "--state", "to_donate")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Added item 1: Caneca") {
		t.Errorf("unexpected add output:\n%s", out)
	}

	if _, err := run(t, dbPath, "", "edit", "1", "--price", "7"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	out, _ = run(t, dbPath, "", "list")
	if !strings.Contains(out, "R$ 7,00") || !strings.Contains(out, "Doação") {
		t.Errorf("expected edited price and unchanged state:\n%s", out)
	}

	out, err = run(t, dbPath, "n\n", "delete", "1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(out, "Cancelled.") {
		t.Errorf("expected cancellation:\n%s", out)
	}

	if _, err := run(t, dbPath, "", "delete", "1", "--yes"); err != nil {
		t.Fatalf("delete --yes: %v", err)
	}
	out, _ = run(t, dbPath, "", "list")
	if !strings.Contains(out, "No items.") {
		t.Errorf("expected empty catalog:\n%s", out)
	}
}

func TestCommandErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.sqlite3")

	if _, err := run(t, dbPath, "", "add", "--price", "1", "--description", "d", "--category", "c"); err == nil {
		t.Error("expected error adding an item without a name")
	}
	if _, err := run(t, dbPath, "", "edit", "42", "--name", "x"); err == nil {
		t.Error("expected error editing a missing item")
	}
	if _, err := run(t, dbPath, "", "edit", "abc"); err == nil {
		t.Error("expected error for a malformed id")
	}
	if _, err := run(t, dbPath, "", "inquiry", "42"); err == nil {
		t.Error("expected error for an empty selection")
	}
}
