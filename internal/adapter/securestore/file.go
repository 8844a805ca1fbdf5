// Package securestore keeps the client's small set of secrets: tokens,
// identity and device flags.
package securestore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	formatVersion = 1
	saltSize      = 16
	keySize       = chacha20poly1305.KeySize

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var ErrWrongPassphrase = errors.New("securestore: wrong passphrase or corrupted file")

type envelope struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Data    []byte `json:"data"`
}

// FileStore is a key/value map sealed with XChaCha20-Poly1305 under a key
// derived from a passphrase. Every write re-seals the whole map.
type FileStore struct {
	path string
	salt []byte
	key  []byte

	mu sync.Mutex
	m  map[string]string
}

// OpenFile loads the store at path, creating an empty one if the file does
// not exist yet.
func OpenFile(path, passphrase string) (*FileStore, error) {
	if passphrase == "" {
		return nil, errors.New("securestore: passphrase is required")
	}

	s := &FileStore{path: path, m: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, s.salt); err != nil {
			return nil, fmt.Errorf("securestore: generate salt: %w", err)
		}
		if s.key, err = deriveKey(passphrase, s.salt); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("securestore: read %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, ErrWrongPassphrase
	}
	if env.Version != formatVersion || len(env.Salt) != saltSize {
		return nil, fmt.Errorf("securestore: unsupported file version %d", env.Version)
	}

	s.salt = env.Salt
	if s.key, err = deriveKey(passphrase, s.salt); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("securestore: cipher: %w", err)
	}
	plain, err := aead.Open(nil, env.Nonce, env.Data, s.salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	if err := json.Unmarshal(plain, &s.m); err != nil {
		return nil, ErrWrongPassphrase
	}
	return s, nil
}

func deriveKey(passphrase string, salt []byte) ([]byte, error) {
	master := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keySize)

	h := hkdf.New(sha256.New, master, salt, []byte("prxwallet securestore v1"))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("securestore: derive key: %w", err)
	}
	return key, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[key], nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, had := s.m[key]
	s.m[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.m[key] = old
		} else {
			delete(s.m, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, k := range keys {
		if _, ok := s.m[k]; ok {
			delete(s.m, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flush()
}

// flush seals the map and replaces the file atomically. Callers hold mu.
func (s *FileStore) flush() error {
	plain, err := json.Marshal(s.m)
	if err != nil {
		return fmt.Errorf("securestore: encode: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return fmt.Errorf("securestore: cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("securestore: nonce: %w", err)
	}

	out, err := json.Marshal(envelope{
		Version: formatVersion,
		Salt:    s.salt,
		Nonce:   nonce,
		Data:    aead.Seal(nil, nonce, plain, s.salt),
	})
	if err != nil {
		return fmt.Errorf("securestore: encode envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("securestore: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".securestore-*")
	if err != nil {
		return fmt.Errorf("securestore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("securestore: write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("securestore: chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("securestore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("securestore: replace %s: %w", s.path, err)
	}
	return nil
}
