// Package hcl provides the HCL implementation of config.Loader for
// `.embedcheck.hcl` settings files. Expressions may read the process
// environment through the `env` object, e.g. `scratch_dir = env.RUNNER_TEMP`.
package hcl
