//go:build !manifold

// Package manifold binds the Manifold C library as a geometry kernel. Without
// the "manifold" build tag only this stub is compiled and New always fails.
package manifold

import (
	"errors"

	"github.com/chazu/facet/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New returns ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
