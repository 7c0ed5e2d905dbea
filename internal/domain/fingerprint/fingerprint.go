// Package fingerprint builds the deterministic vector used to query the analysis cache.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"time"
)

const DefaultDims = 128

type Fingerprint struct {
	Repo       string
	Team       string
	WindowDays int
	Vector     []float32
}

func New(repo, team string, windowDays, dims int) Fingerprint {
	return Fingerprint{
		Repo:       repo,
		Team:       team,
		WindowDays: windowDays,
		Vector:     Embed(repo, team, windowDays, dims),
	}
}

// Embed hashes "repo|team|window" with SHA-256 and spreads the digest over dims
// components, each a big-endian uint32 scaled into [0,1]. The result has unit length.
func Embed(repo, team string, windowDays, dims int) []float32 {
	if dims <= 0 {
		dims = DefaultDims
	}
	sum := sha256.Sum256([]byte(repo + "|" + team + "|" + strconv.Itoa(windowDays)))

	raw := make([]float64, dims)
	var norm float64
	for i := range raw {
		off := (i * 4) % len(sum)
		v := float64(binary.BigEndian.Uint32(sum[off:off+4])) / math.MaxUint32
		raw[i] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, dims)
	for i, v := range raw {
		if norm > 0 {
			v /= norm
		}
		out[i] = float32(v)
	}
	return out
}

// Key is the cache document key for a fingerprint stored at ts.
func (f Fingerprint) Key(prefix string, ts time.Time) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", prefix, f.Repo, f.Team, f.WindowDays, ts.Unix())
}

// ExactKey identifies the fingerprint without a timestamp.
func (f Fingerprint) ExactKey(prefix string) string {
	return fmt.Sprintf("%s%s:%s:%d", prefix, f.Repo, f.Team, f.WindowDays)
}

// Cosine returns the cosine similarity of a and b, or 0 when undefined.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Bytes packs v as little-endian float32, the layout vector indexes expect.
func Bytes(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func FromBytes(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}
