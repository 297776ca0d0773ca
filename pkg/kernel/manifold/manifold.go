//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold produces
// guaranteed-manifold indexed meshes, so its output needs no welding.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/polydata"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with Go-side finalizer
// for automatic memory management.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// Box creates an axis-aligned box with the given dimensions.
// The box is centered at the origin.
func (k *ManifoldKernel) Box(x, y, z float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cube(alloc,
		C.double(x), C.double(y), C.double(z),
		C.int(1), // center=true
	)
	return newSolid(ptr)
}

// Sphere creates a sphere of the given radius centred at the origin.
// Zero circular segments lets Manifold pick a resolution.
func (k *ManifoldKernel) Sphere(radius float64) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_sphere(alloc, C.double(radius), C.int(0))
	return newSolid(ptr)
}

// Cylinder creates a cylinder along the Z axis with the given height,
// radius, and number of circular segments. The cylinder is centered
// at the origin.
func (k *ManifoldKernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	alloc := C.manifold_alloc_manifold()
	ptr := C.manifold_cylinder(alloc,
		C.double(height),
		C.double(radius), // radius_low
		C.double(radius), // radius_high (same = not tapered)
		C.int(segments),
		C.int(1), // center=true
	)
	return newSolid(ptr)
}

// binaryOp is one of the manifoldc boolean entry points.
type binaryOp func(alloc, a, b *C.ManifoldManifold) *C.ManifoldManifold

func (k *ManifoldKernel) binary(a, b kernel.Solid, op binaryOp) kernel.Solid {
	return newSolid(op(C.manifold_alloc_manifold(), a.(*manifoldSolid).ptr, b.(*manifoldSolid).ptr))
}

// Union returns the boolean union of two solids.
func (k *ManifoldKernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.binary(a, b, func(alloc, x, y *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_union(alloc, x, y)
	})
}

// Difference returns a minus b.
func (k *ManifoldKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.binary(a, b, func(alloc, x, y *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_difference(alloc, x, y)
	})
}

// Intersection returns the boolean intersection of two solids.
func (k *ManifoldKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.binary(a, b, func(alloc, x, y *C.ManifoldManifold) *C.ManifoldManifold {
		return C.manifold_intersection(alloc, x, y)
	})
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ptr := C.manifold_translate(C.manifold_alloc_manifold(), s.(*manifoldSolid).ptr,
		C.double(x), C.double(y), C.double(z))
	return newSolid(ptr)
}

// Rotate rotates the solid by Euler angles in degrees about X, then Y, then Z.
func (k *ManifoldKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ptr := C.manifold_rotate(C.manifold_alloc_manifold(), s.(*manifoldSolid).ptr,
		C.double(x), C.double(y), C.double(z))
	return newSolid(ptr)
}

// ToMesh extracts an indexed mesh from the solid using Manifold's MeshGL
// format. Only the position properties are read; any extra per-vertex
// properties are ignored since normals come from the normals pass.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*polydata.Mesh, error) {
	ms := s.(*manifoldSolid)

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, ms.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("manifold: solid has no triangles")
	}

	// MeshGL stores numProp floats per vertex; the first 3 are x, y, z.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	if numProp < 3 {
		return nil, fmt.Errorf("manifold: %d vertex properties, want at least 3", numProp)
	}
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	vertices := make([]float32, numVert*3)
	for i := 0; i < numVert; i++ {
		copy(vertices[i*3:i*3+3], propData[i*numProp:i*numProp+3])
	}

	mesh, err := kernel.FromIndexed(vertices, indices)
	if err != nil {
		return nil, fmt.Errorf("manifold: %w", err)
	}
	return mesh, nil
}
