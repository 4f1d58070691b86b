package chunk

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplitJoin_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte("a"),
		[]byte("hello world"),
		bytes.Repeat([]byte{0xAB}, 1000),
		bytes.Repeat([]byte("xyz"), 4097),
	}
	sizes := []int{1, 2, 3, 7, 100, 1000, 1 << 20}

	for _, payload := range payloads {
		for _, size := range sizes {
			chunks, err := Split(payload, size)
			if err != nil {
				t.Fatalf("split len=%d size=%d: %v", len(payload), size, err)
			}
			if got := Join(chunks); !bytes.Equal(got, payload) {
				t.Fatalf("round trip len=%d size=%d: got %d bytes", len(payload), size, len(got))
			}
		}
	}
}

func TestSplit_ChunkSizing(t *testing.T) {
	payload := bytes.Repeat([]byte{1}, 2500)
	chunks, err := Split(payload, 1000)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		if i < len(chunks)-1 && len(c) != 1000 {
			t.Fatalf("chunk %d: expected 1000 bytes, got %d", i, len(c))
		}
		total += len(c)
	}
	last := chunks[len(chunks)-1]
	if len(last) == 0 || len(last) > 1000 {
		t.Fatalf("last chunk has invalid length %d", len(last))
	}
	if total != len(payload) {
		t.Fatalf("chunk lengths sum to %d, want %d", total, len(payload))
	}
}

func TestSplit_ExactMultiple(t *testing.T) {
	chunks, err := Split(bytes.Repeat([]byte{2}, 3000), 1000)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) != 1000 {
			t.Fatalf("chunk %d: expected 1000 bytes, got %d", i, len(c))
		}
	}
}

func TestSplit_EmptyPayload(t *testing.T) {
	chunks, err := Split(nil, 16)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty payload, got %d", len(chunks))
	}
}

func TestSplit_InvalidChunkSize(t *testing.T) {
	for _, size := range []int{0, -1, -100} {
		if _, err := Split([]byte("data"), size); !errors.Is(err, ErrInvalidChunkSize) {
			t.Fatalf("size %d: expected ErrInvalidChunkSize, got %v", size, err)
		}
	}
}
