// Package engine resolves save files from paths and directories, loads and
// decompresses each one, and runs the escape scanner over it. This package
// is internal; external consumers should use the stable facade in pkg/core.
package engine
