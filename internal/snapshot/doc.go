// Package snapshot defines the data that flows through a codesnap render:
// the fully resolved [Request], its tagged [Background],
// the captured [Image], and the error kinds a render may fail with.
//
// Nothing in this package outlives a single render.
package snapshot
