// Package store provides the small string key/value stores the app persists into.
//
// A KV mirrors the browser storage API the page was designed against: string keys,
// string values, missing keys are not errors. Durable profile state lives in a file or
// SQLite KV under the config dir; session state lives in memory (or a session file for
// one-shot CLI invocations).
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrStorageUnavailable wraps every read/write failure of a backing store.
var ErrStorageUnavailable = errors.New("storage unavailable")

// KV is a string key/value store.
type KV interface {
	// GetItem returns the value for key; ok is false when the key is absent.
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

const (
	profileFileName   = "storage.json"
	profileSQLiteName = "storage.sqlite"
	sessionFileName   = "session.json"
)

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

// ConfigDir returns the directory holding profile state.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.votd).
	if v := strings.TrimSpace(os.Getenv("VOTD_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".votd"), nil
}

// Profile is an opened durable store plus its closer.
type Profile struct {
	KV
	Backend string
	Path    string

	closeFn func() error
}

func (p *Profile) Close() error {
	if p == nil || p.closeFn == nil {
		return nil
	}
	return p.closeFn()
}

// Open opens the durable profile store of the given backend inside dir.
func Open(backend, dir string) (*Profile, error) {
	backend = strings.ToLower(strings.TrimSpace(backend))
	if strings.TrimSpace(dir) == "" {
		d, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	switch backend {
	case "", BackendFile:
		p := filepath.Join(dir, profileFileName)
		return &Profile{KV: NewFileKV(p), Backend: BackendFile, Path: p}, nil
	case BackendSQLite:
		p := filepath.Join(dir, profileSQLiteName)
		kv, err := OpenSQLiteKV(p)
		if err != nil {
			return nil, err
		}
		return &Profile{KV: kv, Backend: BackendSQLite, Path: p, closeFn: kv.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s (expected file|sqlite)", backend)
	}
}

// SessionFile returns the file-backed session store used by one-shot CLI commands.
func SessionFile(dir string) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		d, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return NewFileKV(filepath.Join(dir, sessionFileName)), nil
}
