package ident

import (
	"crypto/rand"
	"fmt"
)

// Generator mints opaque identifiers of a requested length. The
// platform uses one for operation ids and simulated transfer references.
type Generator interface {
	NewID(length int) string
}

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type randomGenerator struct{}

// NewRandom returns a Generator producing random alphanumeric strings.
func NewRandom() Generator { return randomGenerator{} }

func (randomGenerator) NewID(length int) string {
	if length <= 0 {
		return ""
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("ident: reading random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(buf)
}

// Sequence is a deterministic Generator for tests: ids are the prefix
// followed by an incrementing counter, zero-padded to the requested length.
type Sequence struct {
	Prefix string
	n      int
}

func (s *Sequence) NewID(length int) string {
	s.n++
	id := fmt.Sprintf("%s%d", s.Prefix, s.n)
	for len(id) < length {
		id = "0" + id
	}
	return id
}
