package catalog

import (
	"encoding/binary"
	"math"
)

// encodeEmbedding packs a 128-float embedding into its 512-byte
// little-endian BLOB representation. The caller is responsible for
// validating len(e) == EmbeddingDim beforehand.
func encodeEmbedding(e Embedding) []byte {
	buf := make([]byte, len(e)*4)
	for i, v := range e {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeEmbedding unpacks a BLOB into a float32 slice. Returns
// KindCorrupt if the length isn't an exact multiple of 4 bytes
// matching EmbeddingDim.
func decodeEmbedding(op string, blob []byte) (Embedding, error) {
	if len(blob) != EmbeddingDim*4 {
		return nil, newErr(op, KindCorrupt, nil)
	}
	out := make(Embedding, EmbeddingDim)
	for i := range out {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// decodeEmbeddingLoose is like decodeEmbedding but tolerates a nil/empty
// blob, returning a nil Embedding — used for clusters.centroid, which is
// legitimately empty before a cluster's first face is assigned.
func decodeEmbeddingLoose(op string, blob []byte) (Embedding, error) {
	if len(blob) == 0 {
		return nil, nil
	}
	return decodeEmbedding(op, blob)
}
