package utils

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// CompressionAlgorithm selects the codec used for stored payloads.
type CompressionAlgorithm string

const (
	CompressionNone   CompressionAlgorithm = "none"
	CompressionGzip   CompressionAlgorithm = "gzip"
	CompressionZlib   CompressionAlgorithm = "zlib"
	CompressionBrotli CompressionAlgorithm = "brotli" // best ratio for text payloads
)

// CompressData encodes data with the chosen algorithm. Empty input
// passes through untouched.
func CompressData(data []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	if len(data) == 0 || algorithm == CompressionNone {
		return data, nil
	}

	var buf bytes.Buffer
	writer, err := compressionWriter(&buf, algorithm)
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("%s compression failed: %w", algorithm, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%s compression failed: %w", algorithm, err)
	}

	return buf.Bytes(), nil
}

// DecompressData reverses CompressData.
func DecompressData(compressed []byte, algorithm CompressionAlgorithm) ([]byte, error) {
	if len(compressed) == 0 || algorithm == CompressionNone {
		return compressed, nil
	}

	reader, err := compressionReader(bytes.NewReader(compressed), algorithm)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%s decompression failed: %w", algorithm, err)
	}
	return data, nil
}

func compressionWriter(buf *bytes.Buffer, algorithm CompressionAlgorithm) (io.WriteCloser, error) {
	switch algorithm {
	case CompressionGzip:
		return gzip.NewWriter(buf), nil
	case CompressionZlib:
		return zlib.NewWriter(buf), nil
	case CompressionBrotli:
		return brotli.NewWriter(buf), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}

func compressionReader(r io.Reader, algorithm CompressionAlgorithm) (io.Reader, error) {
	switch algorithm {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionZlib:
		return zlib.NewReader(r)
	case CompressionBrotli:
		return brotli.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}
