// Package document provides the read-only, typed view over one configuration
// document: a CI pipeline definition, a composite action definition, or a
// container build file.
//
// Loading is the only place that touches a parser. YAML documents are turned
// into an ordered generic tree (`Node`) whose mapping keys keep declaration
// order, and the typed Job/Step views are extracted from it once. Container
// build files are turned into an ordered list of `Instruction` values. No
// shell semantics live here; those belong to the `resolve` package.
package document
