// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lint lifecycle (discover, load, resolve,
// extract, analyze, remap, report), decoupled from any specific entrypoint
// like a CLI.
package app
