package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
)

// KeyPrefix is the default namespace for persisted keys.
const KeyPrefix = "coursefind:"

// Catalog is the ordered course list. Positions are the join key to the embedding
// matrix, so the order must not change after embeddings are computed.
type Catalog []Course

// Len returns the number of records.
func (c Catalog) Len() int { return len(c) }

// EmbeddingTexts returns the embedding input of every record in catalog order.
func (c Catalog) EmbeddingTexts() []string {
	texts := make([]string, len(c))
	for i := range c {
		texts[i] = c[i].EmbeddingText()
	}
	return texts
}

// Fingerprint identifies the catalog content as seen by a given embedding model.
// It changes when any record's embedding text, the record count, their order or
// the model identity changes.
func (c Catalog) Fingerprint(modelID string) string {
	h := sha256.New()
	writeField(h, []byte(modelID))

	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(c)))
	h.Write(n[:])

	for i := range c {
		writeField(h, []byte(c[i].EmbeddingText()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeField writes a length-prefixed value so that field boundaries are unambiguous.
func writeField(w io.Writer, b []byte) {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = w.Write(n[:])
	_, _ = w.Write(b)
}

// Matrix holds one embedding row per catalog record, in catalog order.
type Matrix [][]float32

// Rows returns the number of rows.
func (m Matrix) Rows() int { return len(m) }

// Dims returns the row width, or 0 for an empty matrix.
func (m Matrix) Dims() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}
