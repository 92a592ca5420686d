// Package shell models the interpreter that will execute an embedded script:
// its invocation string, whether it speaks a POSIX-shell dialect the analyzer
// understands, and the shebang line that tells the analyzer which dialect to
// assume.
package shell
