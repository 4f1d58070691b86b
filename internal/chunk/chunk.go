// Package chunk splits binary payloads into bounded-size slices and joins
// them back. It is pure: persistence and ordering are the store's concern.
package chunk

import "errors"

// ErrInvalidChunkSize is returned when the configured maximum chunk size is
// not a positive byte count.
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Split cuts payload into ceil(len(payload)/chunkSize) slices. Every slice
// has length chunkSize except the last, which is shorter when the payload is
// not an exact multiple. The slices alias the payload; callers that mutate
// the payload afterwards must copy. An empty payload yields no chunks.
func Split(payload []byte, chunkSize int) ([][]byte, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if len(payload) == 0 {
		return nil, nil
	}

	count := (len(payload) + chunkSize - 1) / chunkSize
	chunks := make([][]byte, 0, count)
	for start := 0; start < len(payload); start += chunkSize {
		end := start + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunks = append(chunks, payload[start:end])
	}
	return chunks, nil
}

// Join concatenates chunks in the given order. The caller supplies them in
// original insertion order; Join does not re-sort.
func Join(chunks [][]byte) []byte {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}
