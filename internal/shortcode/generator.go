// Package shortcode produces unique, URL-safe short codes.
package shortcode

import (
	"context"
	"errors"
	"regexp"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/jaevor/go-nanoid"
)

// Alphabet excludes ambiguous characters (0/O, 1/l/I).
const Alphabet = "23456789abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"

// DefaultLength is the default generated code length.
const DefaultLength = 8

// generateRetries bounds the attempts on residual collisions.
const generateRetries = 5

var customCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,64}$`)

// ErrInvalidCustomCode indicates a custom code with disallowed
// characters or length.
var ErrInvalidCustomCode = errors.New("invalid custom code")

// NewCodeFunc returns a fresh random short code.
type NewCodeFunc func() string

// NewRandomCode builds a nanoid generator over the unambiguous alphabet.
func NewRandomCode(length int) (NewCodeFunc, error) {
	if length <= 0 {
		length = DefaultLength
	}

	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, err
	}

	return NewCodeFunc(gen), nil
}

// Generator assigns short codes and persists new links through a
// link.Store, handling collisions on both custom and generated codes.
type Generator struct {
	store   link.Store
	newCode NewCodeFunc
}

// NewGenerator creates a generator backed by the given store.
func NewGenerator(store link.Store, newCode NewCodeFunc) *Generator {
	return &Generator{
		store:   store,
		newCode: newCode,
	}
}

// Create persists l under customCode when supplied, otherwise under a
// generated code. A custom code collision fails immediately with
// link.ErrCodeConflict; generated codes are retried a bounded number
// of times rather than ever overwriting an existing link.
func (g *Generator) Create(ctx context.Context, l *link.Link, customCode string) error {
	if customCode != "" {
		if !customCodeRe.MatchString(customCode) {
			return ErrInvalidCustomCode
		}

		l.Code = link.Code(customCode)

		return g.store.Create(ctx, l)
	}

	for i := 0; i < generateRetries; i++ {
		l.Code = link.Code(g.newCode())

		err := g.store.Create(ctx, l)
		if err == nil {
			return nil
		}

		if !errors.Is(err, link.ErrCodeConflict) {
			return err
		}
	}

	return link.ErrCodeConflict
}
