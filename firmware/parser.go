package firmware

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// MagicSize is the length of the image file header.
const MagicSize = 4

// Magic is the header every image file must start with.
var Magic = [MagicSize]byte{0x0F, 0x03, 0x00, 0x0B}

// ImageFormatError indicates a file that is not a valid firmware image.
type ImageFormatError struct {
	// Reason describes what was wrong with the file
	Reason string

	// Header holds the bytes found where the magic was expected
	Header []byte
}

func (e *ImageFormatError) Error() string {
	if e.Header != nil {
		return fmt.Sprintf("invalid image: %s (header % X, expected % X)", e.Reason, e.Header, Magic[:])
	}
	return fmt.Sprintf("invalid image: %s", e.Reason)
}

// IsImageFormatError returns true if err is or wraps an ImageFormatError.
func IsImageFormatError(err error) bool {
	var target *ImageFormatError
	return errors.As(err, &target)
}

// Parse loads an image file from the given path.
//
// Example:
//
//	img, err := firmware.Parse("app.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Parse(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f)
}

// ParseReader loads an image from any io.Reader.
func ParseReader(r io.Reader) (*Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return ParseBytes(raw)
}

// ParseBytes validates the magic header of raw and returns the image body.
// The returned Image does not alias raw.
func ParseBytes(raw []byte) (*Image, error) {
	if len(raw) < MagicSize {
		return nil, &ImageFormatError{
			Reason: fmt.Sprintf("file too short: got %d bytes, header needs %d", len(raw), MagicSize),
		}
	}

	if !bytes.Equal(raw[:MagicSize], Magic[:]) {
		header := make([]byte, MagicSize)
		copy(header, raw[:MagicSize])
		return nil, &ImageFormatError{Reason: "bad magic", Header: header}
	}

	if len(raw) == MagicSize {
		return nil, &ImageFormatError{Reason: "no image data after header"}
	}

	data := make([]byte, len(raw)-MagicSize)
	copy(data, raw[MagicSize:])

	return &Image{Data: data}, nil
}
