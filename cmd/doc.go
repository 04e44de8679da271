// Package cmd implements the command-line interface for the birch
// serialization engine. It provides a small command tree with debugging and
// benchmarking tools around the library packages.
//
// The package is organized into several subpackages:
//
//   - inspect: Commands for examining files of serialized values
//   - perf: Commands for benchmarking the codecs in-process
//   - util: Shared utilities for command-line processing, configuration and
//     logging (internal use)
//
// See birch -help for a list of all commands.
package cmd
