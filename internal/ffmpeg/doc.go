// Package ffmpeg adapts the external ffmpeg tool to the task engine's
// Runner contract: it builds the argument list for single-file and
// concatenated conversions, launches and supervises the subprocess,
// parses progress from its stderr, and stops it gracefully on pause or
// cancel. The raw capture streams have broken timestamps, so every
// invocation carries the regeneration and error-tolerance flags.
package ffmpeg
