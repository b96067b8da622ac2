// Package compression lists the TIFF Compression values the texture readers
// understand.
package compression

const (
	None    = 1
	Deflate = 8
)
