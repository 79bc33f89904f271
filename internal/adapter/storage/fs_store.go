package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"podcast-orchestrator/internal/domain"
)

// FSStore keeps audio artifacts on the local filesystem under a base
// directory. Fetch additionally resolves http(s) URLs so segments produced by
// an external pipeline can still be combined.
type FSStore struct {
	baseDir string
	client  *http.Client
}

// NewFSStore creates the store, ensuring the base directory exists.
func NewFSStore(baseDir string, httpClient *http.Client) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio dir: %w", err)
	}
	return &FSStore{baseDir: baseDir, client: httpClient}, nil
}

var _ domain.SegmentStore = (*FSStore)(nil)

func (s *FSStore) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create segment dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *FSStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		return s.fetchURL(ctx, key)
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *FSStore) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.TransportError{Status: resp.StatusCode, Body: url}
	}
	return io.ReadAll(resp.Body)
}

// resolve maps key onto the base directory, rejecting path escapes.
func (s *FSStore) resolve(key string) (string, error) {
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid segment key %q", key)
	}
	return path, nil
}
