package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future encoding migration.
const (
	DomainState   = "jfa/state/v1"
	DomainProblem = "jfa/problem/v1"
)

// StateKey is the content hash of a State.
type StateKey [sha256.Size]byte

// String returns the hex encoding of the key.
func (k StateKey) String() string {
	return hex.EncodeToString(k[:])
}

// Key computes the content hash of the state.
// Format: SHA256(DomainState + 0x00 + canonical encoding)
//
// The canonical encoding writes the dimensions first, then every field in
// row-major order. Floats are written as IEEE-754 bits with -0 folded into
// +0 so that element-wise equal states always hash alike.
func (s State) Key() StateKey {
	h := sha256.New()
	h.Write([]byte(DomainState))
	h.Write([]byte{0x00})

	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.Effectors)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.Targets)))
	for _, e := range s.Effectors {
		buf = binary.BigEndian.AppendUint64(buf, uint64(int64(e.Capacity)))
	}
	for _, t := range s.Targets {
		buf = appendFloat(buf, t.Value)
		buf = appendFloat(buf, t.Selected)
	}
	for _, row := range s.Opportunities {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(row)))
		for _, o := range row {
			if o.Selectable {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
			buf = appendFloat(buf, o.PSuccess)
		}
	}
	h.Write(buf)

	var k StateKey
	copy(k[:], h.Sum(nil))
	return k
}

func appendFloat(buf []byte, f float64) []byte {
	if f == 0 {
		f = 0 // folds -0
	}
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
}

// hashWithDomain computes SHA-256 with domain separation.
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
