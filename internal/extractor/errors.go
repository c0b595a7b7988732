package extractor

import "errors"

var (
	// ErrFileNotFound is returned when the source path does not resolve.
	ErrFileNotFound = errors.New("audio file not found")

	// ErrUnsupportedFormat is returned when no decoder understands the
	// source container, including after the ffmpeg fallback has been tried.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrDecodingFailed is returned when a decoder recognised the container
	// but failed partway through the sample data.
	ErrDecodingFailed = errors.New("audio decoding failed")

	// ErrInvalidBuffer is returned when decoding succeeded but produced no
	// channel data.
	ErrInvalidBuffer = errors.New("decoded buffer has no channel data")
)
