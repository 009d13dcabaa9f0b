// Package infra contains technical adapters such as log backends.
// These packages should depend only on the interfaces defined in the
// core packages.
package infra
