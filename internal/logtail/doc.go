// Package logtail reads SDL core log files into buffers.
//
// Read returns the last N lines of a file using a ring buffer, so a tail of a
// multi-gigabyte log costs O(N) memory and a single pass. Load wraps Read and
// produces the immutable buffer.Buffer the rest of the tool works on; when
// asked to, it also inserts ignition cycle separators in front of every
// application start.
//
// Example usage:
//
//	buf, err := logtail.Load("/tmp/SmartDeviceLinkCore.log", logtail.Options{
//		Syntax:     syntax.Default(),
//		Separators: true,
//	})
//
// Read returns nil, nil for files that do not exist, which lets the follow
// loop wait for a log that has not been created yet. Load treats a missing
// file as an error.
package logtail
