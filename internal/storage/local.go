package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Allowed extension sets, matched case-insensitively. Reference documents
// additionally accept plain text.
var (
	SubmissionExtensions = map[string]bool{".pdf": true, ".py": true}
	ReferenceExtensions  = map[string]bool{".pdf": true, ".py": true, ".txt": true}
)

// AllowedExtension reports whether filename's extension is in the set.
func AllowedExtension(filename string, allowed map[string]bool) bool {
	return allowed[strings.ToLower(filepath.Ext(filename))]
}

// SubmissionPath returns the deterministic store-relative path for a
// pupil's submission document. The embedded ids are the collision
// avoidance scheme: distinct (assignment, pupil) pairs can never map to
// the same path.
func SubmissionPath(assignmentID, pupilID uint, filename string) string {
	return fmt.Sprintf("sub_%d_%d_%s", assignmentID, pupilID, sanitize(filename))
}

// ReferencePath returns the deterministic store-relative path for an
// assignment's reference solution.
func ReferencePath(assignmentID uint, filename string) string {
	return fmt.Sprintf("ref_%d_%s", assignmentID, sanitize(filename))
}

// sanitize strips any directory components and path separators from an
// uploaded filename.
func sanitize(filename string) string {
	name := filepath.Base(filepath.Clean(filename))
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	if name == "." || name == ".." || name == "" {
		return "file"
	}
	return name
}

// LocalStore writes documents to a directory tree on local disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string { return s.root }

// Save writes r to the store-relative path, creating it. The path must
// come from SubmissionPath or ReferencePath.
func (s *LocalStore) Save(path string, r io.Reader) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Open returns a reader over a stored document.
func (s *LocalStore) Open(path string) (io.ReadCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// ReadAll returns a stored document's full contents.
func (s *LocalStore) ReadAll(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

func (s *LocalStore) Exists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(full)
	return statErr == nil
}

// resolve joins path against the root and rejects traversal outside it.
func (s *LocalStore) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid document path %q", path)
	}
	return full, nil
}
