// Package photometric lists the TIFF PhotometricInterpretation values the
// texture readers understand.
package photometric

const (
	BlackIsZero = 1
	RGB         = 2
)
