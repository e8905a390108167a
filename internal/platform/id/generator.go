package id

import (
	crerr "github.com/cockroachdb/errors"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const matchAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// NanoIDGenerator issues url-safe ids with an optional prefix, e.g. "m_4f9x0c2k1a7b".
type NanoIDGenerator struct {
	prefix string
	size   int
}

func NewNanoIDGenerator(prefix string, size int) *NanoIDGenerator {
	if size <= 0 {
		size = 12
	}
	return &NanoIDGenerator{prefix: prefix, size: size}
}

func (g *NanoIDGenerator) NewID() (string, error) {
	value, err := gonanoid.Generate(matchAlphabet, g.size)
	if err != nil {
		return "", crerr.Wrap(err, "generate nanoid")
	}
	if g.prefix == "" {
		return value, nil
	}
	return g.prefix + "_" + value, nil
}
