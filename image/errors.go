package image

import "fmt"

// DecodeError reports a source image that could not be read. It is terminal
// for the request.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode image: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodingError reports raster dimensions the GS v 0 header cannot carry.
type EncodingError struct {
	Width, Height int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("raster %dx%d does not fit the 16-bit header fields", e.Width, e.Height)
}
