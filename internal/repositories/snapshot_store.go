package repositories

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"usermgmt/internal/models"

	"go.uber.org/zap"
)

// FileSnapshotStore keeps the record set in a single JSON document: an object keyed by user id.
type FileSnapshotStore struct {
	path   string
	logger *zap.Logger
}

// NewFileSnapshotStore creates a store backed by the file at path.
func NewFileSnapshotStore(path string, logger *zap.Logger) *FileSnapshotStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSnapshotStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileSnapshotStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is created empty. An empty or unreadable document is
// treated as corrupt and replaced with an empty one rather than failing startup.
func (s *FileSnapshotStore) Load() (*UserIndex, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("snapshot file not found, creating empty snapshot", zap.String("path", s.path))
		return s.reset()
	}
	if err != nil {
		return nil, &models.StorageError{Op: "load", Err: err}
	}

	ix, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Warn("snapshot file is corrupt, resetting to empty",
			zap.String("path", s.path),
			zap.Int("size", len(data)),
			zap.Error(err),
		)
		return s.reset()
	}
	s.logger.Info("snapshot loaded", zap.String("path", s.path), zap.Int("users", ix.Len()))
	return ix, nil
}

func (s *FileSnapshotStore) reset() (*UserIndex, error) {
	ix := NewUserIndex()
	if err := s.Save(ix); err != nil {
		return nil, err
	}
	return ix, nil
}

// Save writes ix to a temporary file next to the target and renames it into place,
// so readers see either the previous snapshot or the new one in full.
func (s *FileSnapshotStore) Save(ix *UserIndex) error {
	data, err := encodeSnapshot(ix)
	if err != nil {
		return &models.StorageError{Op: "save", Err: err}
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return &models.StorageError{Op: "save", Err: err}
	}
	s.logger.Debug("snapshot saved", zap.String("path", s.path), zap.Int("users", ix.Len()))
	return nil
}

func writeFileAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// encodeSnapshot renders ix as an indented JSON object whose keys follow index order.
func encodeSnapshot(ix *UserIndex) ([]byte, error) {
	users := ix.All()
	if len(users) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, u := range users {
		key, err := json.Marshal(u.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.MarshalIndent(u, "  ", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode user %s: %w", u.ID, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		if i < len(users)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// decodeSnapshot parses a snapshot document, keeping key order. Any structural problem fails
// the whole document so callers never see a partial index.
func decodeSnapshot(data []byte) (*UserIndex, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read document start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("document is not an object")
	}

	ix := NewUserIndex()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		id, _ := tok.(string)

		var u *models.User
		if err := dec.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode user %q: %w", id, err)
		}
		if u == nil || u.Email == "" {
			return nil, fmt.Errorf("user %q is empty", id)
		}
		u.ID = id
		ix.Put(*u)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read document end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after document")
	}
	return ix, nil
}
