// Package catalogue serves the fixed set of transport routes leaving the
// campus and generates directions for them. Routes come from an embedded
// JSON fixture or a file override and are never mutated at runtime.
package catalogue
