// Package fs keeps exported directory snapshots on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Archive writes snapshots as files under a root directory.
type Archive struct {
	root   string
	logger *zap.Logger
}

// New returns an archive rooted at root, creating it if needed.
func New(root string, logger *zap.Logger) (*Archive, error) {
	if root == "" {
		root = "exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &Archive{root: root, logger: logger}, nil
}

// sanitizeKey forbids absolute keys and path traversal.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	clean := filepath.ToSlash(filepath.Clean(key))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key traversal")
	}
	return clean, nil
}

// Put writes body to root/key through a temp file and returns the file path.
// An existing file is replaced.
func (a *Archive) Put(ctx context.Context, key string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(a.root, k)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}

	a.logger.Info("Archived directory export", zap.String("location", path), zap.Int("bytes", len(body)))
	return path, nil
}
