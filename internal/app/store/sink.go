package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink is where a snapshot document is read from at startup and written to on Save.
type Sink interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	String() string
}

// FileSink stores the snapshot in a local file.
type FileSink struct {
	Path string
}

// NewFileSink returns a sink backed by the file at path.
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

func (f *FileSink) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Path)
}

// Write replaces the file atomically: the document goes to a temporary file in the
// same directory which is then renamed over the target.
func (f *FileSink) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	return os.Rename(tmpName, f.Path)
}

func (f *FileSink) String() string {
	return "file://" + f.Path
}

// MemorySink keeps the snapshot in memory. It is used for tests and dry runs.
type MemorySink struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemorySink returns a sink whose initial document is data.
func NewMemorySink(data []byte) *MemorySink {
	return &MemorySink{data: append([]byte(nil), data...)}
}

func (m *MemorySink) Read(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.data...), nil
}

func (m *MemorySink) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Bytes returns the last written document.
func (m *MemorySink) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]byte(nil), m.data...)
}

// Writes returns how many times Write was called.
func (m *MemorySink) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

func (m *MemorySink) String() string {
	return "memory://snapshot"
}
