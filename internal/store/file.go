package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// FileKV keeps all keys in one JSON object on disk.
//
// Every write re-reads the file so that several processes (CLI + TUI + web) sharing a
// config dir see each other's keys; the rename in atomicWriteFile keeps readers from
// ever observing a half-written document.
type FileKV struct {
	path string

	mu sync.Mutex
}

func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) Path() string { return f.path }

func (f *FileKV) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		return "", false, unavailable("read "+f.path, err)
	}
	v, ok := m[key]
	return v, ok, nil
}

func (f *FileKV) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		if !corrupt(err) {
			return unavailable("read "+f.path, err)
		}
		// A corrupt document is replaced rather than blocking every future write.
		m = map[string]string{}
	}
	m[key] = value
	return unavailable("write "+f.path, f.write(m))
}

func (f *FileKV) RemoveItem(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := f.read()
	if err != nil {
		if corrupt(err) {
			return nil
		}
		return unavailable("read "+f.path, err)
	}
	if _, ok := m[key]; !ok {
		return nil
	}
	delete(m, key)
	return unavailable("write "+f.path, f.write(m))
}

func (f *FileKV) read() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(b) == 0 {
		return map[string]string{}, nil
	}
	m := map[string]string{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func corrupt(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}

func (f *FileKV) write(m map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, filepath.Base(f.path)+".*.tmp", f.path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
