// Package graph defines the scene graph for facet.
// The scene graph is a DAG of primitives, transforms, boolean operations and
// groups, together with the normals settings requested by the scene. It is
// built once per evaluation and never mutated afterwards.
package graph
