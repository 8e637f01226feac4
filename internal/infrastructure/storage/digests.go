package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"ContentRadar/internal/ports"
)

// DigestDir writes rendered digests as date-keyed Markdown files.
type DigestDir struct {
	dir string
}

var _ ports.DigestStore = (*DigestDir)(nil)

// NewDigestDir ensures dir exists and returns a store rooted there.
func NewDigestDir(dir string) (*DigestDir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create digest dir %s: %w", dir, err)
	}
	return &DigestDir{dir: dir}, nil
}

// SaveDigest writes markdown to digest-<date>.md, replacing any earlier
// digest for the same date, and returns the file path.
func (d *DigestDir) SaveDigest(date, markdown string) (string, error) {
	path := filepath.Join(d.dir, fmt.Sprintf("digest-%s.md", date))
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("write digest %s: %w", path, err)
	}
	return path, nil
}
