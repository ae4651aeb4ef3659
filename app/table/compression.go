package table

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// CompressionType represents the compression format of a file
type CompressionType int

const (
	CompressionNone CompressionType = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

// String returns the string representation of CompressionType
func (ct CompressionType) String() string {
	switch ct {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// signatures lists the leading bytes of each supported compressed stream
var signatures = []struct {
	kind  CompressionType
	magic []byte
}{
	{CompressionGzip, []byte{0x1f, 0x8b}},
	{CompressionBzip2, []byte("BZh")},
	{CompressionXZ, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}},
}

const maxSignatureLen = 6

// DetectCompressionByMagic reports the compression of a file from its first
// bytes. Files shorter than a signature are treated as uncompressed.
func DetectCompressionByMagic(path string) (CompressionType, error) {
	f, err := os.Open(path)
	if err != nil {
		return CompressionNone, err
	}
	defer f.Close()

	head := make([]byte, maxSignatureLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return CompressionNone, err
	}
	head = head[:n]

	for _, sig := range signatures {
		if bytes.HasPrefix(head, sig.magic) {
			return sig.kind, nil
		}
	}
	return CompressionNone, nil
}

// openDecompressing opens path and layers the decoder for compression on top.
// Closing the result closes the decoder and the file.
func openDecompressing(path string, compression CompressionType) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	switch compression {
	case CompressionNone:
		return f, nil
	case CompressionGzip:
		r, err = gzip.NewReader(f)
	case CompressionBzip2:
		r = bzip2.NewReader(f)
	case CompressionXZ:
		r, err = xz.NewReader(f)
	default:
		err = fmt.Errorf("unsupported compression type: %v", compression)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open %s stream: %w", compression, err)
	}
	return &decodedFile{Reader: r, file: f}, nil
}

type decodedFile struct {
	io.Reader
	file *os.File
}

func (d *decodedFile) Close() error {
	if c, ok := d.Reader.(io.Closer); ok {
		c.Close()
	}
	return d.file.Close()
}
