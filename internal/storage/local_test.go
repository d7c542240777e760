package storage

import (
	"io"
	"strings"
	"testing"
)

func TestAllowedExtension(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		allowed  map[string]bool
		want     bool
	}{
		{name: "pdf submission", filename: "hw1.pdf", allowed: SubmissionExtensions, want: true},
		{name: "py submission", filename: "solution.py", allowed: SubmissionExtensions, want: true},
		{name: "uppercase extension", filename: "HW1.PDF", allowed: SubmissionExtensions, want: true},
		{name: "exe rejected", filename: "x.exe", allowed: SubmissionExtensions, want: false},
		{name: "txt rejected for submission", filename: "notes.txt", allowed: SubmissionExtensions, want: false},
		{name: "txt allowed for reference", filename: "notes.txt", allowed: ReferenceExtensions, want: true},
		{name: "no extension", filename: "README", allowed: SubmissionExtensions, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedExtension(tt.filename, tt.allowed); got != tt.want {
				t.Errorf("AllowedExtension(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestDeterministicPaths(t *testing.T) {
	if got, want := SubmissionPath(7, 42, "hw1.pdf"), "sub_7_42_hw1.pdf"; got != want {
		t.Errorf("SubmissionPath = %q, want %q", got, want)
	}
	if got, want := ReferencePath(7, "solution.pdf"), "ref_7_solution.pdf"; got != want {
		t.Errorf("ReferencePath = %q, want %q", got, want)
	}

	// Uploaded names must not escape the store.
	got := SubmissionPath(1, 2, "../../etc/passwd")
	if strings.Contains(got, "..") || strings.Contains(got, "/") {
		t.Errorf("SubmissionPath did not sanitize traversal: %q", got)
	}
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	path := SubmissionPath(3, 9, "hw1.pdf")
	if store.Exists(path) {
		t.Fatal("document should not exist before save")
	}

	if err := store.Save(path, strings.NewReader("pdf-bytes")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists(path) {
		t.Fatal("document should exist after save")
	}

	r, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("stored content = %q, want %q", data, "pdf-bytes")
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	if err := store.Save("../outside.txt", strings.NewReader("x")); err != nil {
		// Join+Clean confines the path inside the root; either outcome
		// must keep the file under the store root.
		return
	}
	if store.Exists("../outside.txt") != store.Exists("outside.txt") {
		t.Error("traversal path escaped the store root")
	}
}
