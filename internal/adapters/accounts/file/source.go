package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/major-rewards-cli/internal/domain"
	"github.com/bnema/major-rewards-cli/internal/ports"
)

const accountsFileMode = 0o600

// Source reads one account launch link per line.
type Source struct {
	path string
}

var _ ports.AccountSource = (*Source)(nil)

func NewSource(path string) *Source {
	return &Source{path: filepath.Clean(path)}
}

func (s *Source) Path() string {
	return s.path
}

// Load returns domain.ErrAccountsFileCreated after creating an empty file
// when none exists, so the caller can stop and ask for input.
func (s *Source) Load(ctx context.Context) ([]domain.AccountEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read accounts file: %w", err)
		}
		if err := s.createEmpty(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountsFileCreated, s.path)
	}

	return ParseEntries(string(data)), nil
}

func ParseEntries(content string) []domain.AccountEntry {
	lines := strings.Split(content, "\n")
	entries := make([]domain.AccountEntry, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		entries = append(entries, domain.AccountEntry{Raw: trimmed})
	}

	return entries
}

func (s *Source) createEmpty() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create accounts directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, nil, accountsFileMode); err != nil {
		return fmt.Errorf("create accounts file: %w", err)
	}

	return nil
}
