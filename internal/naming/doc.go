// Package naming derives output paths from capture file names: embedded
// timestamp extraction for segment ordering, stem-preserving .mp4 paths,
// merged-recording names, and in-run collision resolution.
package naming
