package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompressionRoundtrip(t *testing.T) {
	payload := []byte(strings.Repeat("vector index snapshot payload ", 200))

	algorithms := []CompressionAlgorithm{
		CompressionNone,
		CompressionGzip,
		CompressionZlib,
		CompressionBrotli,
	}
	for _, algo := range algorithms {
		t.Run(string(algo), func(t *testing.T) {
			compressed, err := CompressData(payload, algo)
			if err != nil {
				t.Fatalf("CompressData: %v", err)
			}
			if algo != CompressionNone && len(compressed) >= len(payload) {
				t.Errorf("%s did not shrink a repetitive payload: %d >= %d", algo, len(compressed), len(payload))
			}

			restored, err := DecompressData(compressed, algo)
			if err != nil {
				t.Fatalf("DecompressData: %v", err)
			}
			if !bytes.Equal(restored, payload) {
				t.Error("roundtrip changed the payload")
			}
		})
	}
}

func TestCompressionEmptyInput(t *testing.T) {
	if out, err := CompressData(nil, CompressionBrotli); err != nil || len(out) != 0 {
		t.Errorf("CompressData(nil) = %v, %v", out, err)
	}
	if out, err := DecompressData(nil, CompressionBrotli); err != nil || len(out) != 0 {
		t.Errorf("DecompressData(nil) = %v, %v", out, err)
	}
}

func TestCompressionUnsupportedAlgorithm(t *testing.T) {
	if _, err := CompressData([]byte("x"), "lz4"); err == nil {
		t.Error("CompressData accepted an unsupported algorithm")
	}
	if _, err := DecompressData([]byte("x"), "lz4"); err == nil {
		t.Error("DecompressData accepted an unsupported algorithm")
	}
}

func TestDecompressTruncatedStream(t *testing.T) {
	payload := []byte(strings.Repeat("abcdefgh", 1000))

	for _, algo := range []CompressionAlgorithm{CompressionGzip, CompressionZlib, CompressionBrotli} {
		compressed, err := CompressData(payload, algo)
		if err != nil {
			t.Fatalf("CompressData(%s): %v", algo, err)
		}
		if _, err := DecompressData(compressed[:len(compressed)/2], algo); err == nil {
			t.Errorf("%s accepted a truncated stream", algo)
		}
	}
}
