package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/ports"
)

const (
	tokensDirMode   = 0o700
	tokensFileMode  = 0o600
	tempFilePattern = ".tokens-*.json.tmp"
)

// Store keeps every account token in one JSON object keyed by account key.
type Store struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.TokenStore = (*Store)(nil)

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tokens path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve tokens path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Store{path: absPath, mu: lockForPath(absPath)}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(ctx context.Context, key domain.AccountKey) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens, err := s.read()
	if err != nil {
		return "", false
	}

	token, ok := tokens[string(key)]
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

// Put merges key into whatever is already on disk. An unreadable file is
// treated as empty and replaced.
func (s *Store) Put(ctx context.Context, key domain.AccountKey, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(string(key)) == "" {
		return errors.New("account key is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.read()
	if err != nil {
		tokens = map[string]string{}
	}
	tokens[string(key)] = token

	return s.write(tokens)
}

// All returns a snapshot of every stored token.
func (s *Store) All(ctx context.Context) (map[domain.AccountKey]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens, err := s.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[domain.AccountKey]string{}, nil
		}
		return nil, err
	}

	out := make(map[domain.AccountKey]string, len(tokens))
	for key, token := range tokens {
		out[domain.AccountKey(key)] = token
	}

	return out, nil
}

func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read tokens file: %w", err)
	}

	tokens := map[string]string{}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode tokens file: %w", err)
	}
	if tokens == nil {
		tokens = map[string]string{}
	}

	return tokens, nil
}

func (s *Store) write(tokens map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), tokensDirMode); err != nil {
		return fmt.Errorf("create tokens directory: %w", err)
	}

	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode tokens file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp tokens file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp tokens file: %w", err)
	}

	if err := tempFile.Chmod(tokensFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp tokens file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp tokens file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace tokens file: %w", err)
	}

	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
