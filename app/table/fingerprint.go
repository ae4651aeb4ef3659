package table

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

// FileHashKey keys every table fingerprint; it is fixed so a file always
// fingerprints the same across runs.
var FileHashKey = func() []byte {
	key := make([]byte, highwayhash.Size)
	copy(key, "spcplot file fingerprint key")
	return key
}()

// CalculateFileHash fingerprints the content of path with FileHashKey
func CalculateFileHash(path string) (string, error) {
	return CalculateFileHashWithKey(path, FileHashKey)
}

// CalculateFileHashWithKey fingerprints the content of path as a hex
// HighwayHash-256. key must be 32 bytes.
func CalculateFileHashWithKey(path string, key []byte) (string, error) {
	h, err := highwayhash.New(key)
	if err != nil {
		return "", fmt.Errorf("invalid fingerprint key: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
