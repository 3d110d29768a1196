// Package domain holds the value types of the vertex pipeline: input points,
// their geographic annotations, the sequenced output and the error taxonomy.
// It has no dependencies outside the standard library.
package domain
