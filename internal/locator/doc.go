// internal/locator/doc.go

/*
Package locator provides a structured, type-safe representation for the
logical position of an embedded script inside a configuration document.

An address is a dot-separated sequence of segments, each optionally indexed,
e.g. `build.steps[2].run` or `instructions[4].healthcheck.cmd`. A Locator pairs
an address with the path of the document it belongs to and renders as
`<document path> <address>`, which is the form diagnostics are reported in.

This package centralizes all formatting and parsing of those identifiers.
*/
package locator
