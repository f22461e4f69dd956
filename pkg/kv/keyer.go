package kv

import (
	"github.com/matzehuels/bentogrid/pkg/errors"
)

// DefaultGrid is the grid name used when none is given.
const DefaultGrid = "default"

// Keyer maps grid names to store keys.
type Keyer interface {
	GridKey(name string) string
}

// DefaultKeyer produces keys of the form "bento:grid:<name>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GridKey returns the key for a grid document.
func (DefaultKeyer) GridKey(name string) string {
	if name == "" {
		name = DefaultGrid
	}
	return "bento:grid:" + name
}

// ScopedKeyer wraps a Keyer with a prefix so that several users or
// environments can share one Redis or Mongo instance.
//
// Example usage:
//
//	// Per-user grids on a shared server
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GridKey generates a prefixed grid key.
func (k *ScopedKeyer) GridKey(name string) string {
	return k.prefix + k.inner.GridKey(name)
}

// GridKey validates name and returns its key under keyer.
func GridKey(keyer Keyer, name string) (string, error) {
	if name == "" {
		name = DefaultGrid
	}
	if err := errors.ValidateGridName(name); err != nil {
		return "", err
	}
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	return keyer.GridKey(name), nil
}
