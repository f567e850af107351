// Package packet owns the nested packet wire format.
//
// Ownership boundary:
// - header and body decoding over a bits.Buffer
// - version-sum and expression evaluation
// - encoding trees back to the wire format
//
// Decoding is a single forward pass. A malformed stream invalidates the
// whole decode; there is no partial result.
package packet
