// Package order turns an OMR processing result into order-line candidates.
//
// Only items whose selection mark is filled become lines. The quantity mark
// does not change the quantity, which is always 1, but its confidence is
// combined with the selection confidence by taking the minimum.
//
// Builder wraps an engine to provide the single-call order-building
// contract used by the HTTP and MCP boundaries: one image path in, one
// Result out, with OrderItems never nil.
package order
