package table

import (
	"path/filepath"
	"strings"
)

// compressionExtensions maps compression extensions to their CompressionType
var compressionExtensions = map[string]CompressionType{
	".gz":  CompressionGzip,
	".bz2": CompressionBzip2,
	".xz":  CompressionXZ,
}

// DetectFormat determines the file type and compression from the path.
//
// Supported inputs:
//   - CSV (.csv), optionally compressed as .csv.gz, .csv.bz2 or .csv.xz
//   - Parquet (.parquet)
//
// Matching is case-insensitive. A plain .csv whose bytes start with a known
// compression signature is decompressed as well. Anything else is reported
// as UnsupportedFormat carrying the offending extension.
func DetectFormat(filePath string) (FileType, CompressionType, error) {
	lower := strings.ToLower(filePath)

	compressionType := CompressionNone
	inner := lower
	for ext, ct := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			compressionType = ct
			inner = strings.TrimSuffix(lower, ext)
			break
		}
	}

	ext := filepath.Ext(inner)
	switch ext {
	case ".csv":
		if compressionType == CompressionNone {
			if magic, err := DetectCompressionByMagic(filePath); err == nil {
				compressionType = magic
			}
		}
		return FileTypeCSV, compressionType, nil
	case ".parquet":
		if compressionType != CompressionNone {
			return FileTypeUnknown, compressionType, newUnsupportedFormat(filepath.Ext(lower))
		}
		return FileTypeParquet, CompressionNone, nil
	case "":
		return FileTypeUnknown, compressionType, newUnsupportedFormat("No file extension")
	default:
		return FileTypeUnknown, compressionType, newUnsupportedFormat(ext)
	}
}
