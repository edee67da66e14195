package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// File streams the file at path through SHA-256.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum: open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum: read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Same reports whether the files at a and b have identical content.
func Same(a, b string) (bool, error) {
	sa, err := File(a)
	if err != nil {
		return false, err
	}
	sb, err := File(b)
	if err != nil {
		return false, err
	}
	return sa == sb, nil
}
