// Package resolve computes, for every runnable step or instruction of a
// document, the shell interpreter that will execute it at runtime.
//
// Each document kind has its own default cascade, so each kind gets its own
// resolver: pipelines layer step, prepare-script, job, document and runner
// defaults; composite actions only know the step's own shell; container
// builds thread a shell context through the instructions of each build stage.
// The result is a Plan listing every unit with its resolved shell, or the
// reason it is skipped, or the error that makes it unresolvable.
package resolve
