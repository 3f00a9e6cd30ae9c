// Package firmware loads JN516x firmware image files.
//
// # Image File Format
//
// An image file starts with a fixed 4-byte magic header followed by the raw
// binary that is written to flash:
//
//	[MAGIC(4)][IMAGE...]
//	  0F 03 00 0B = magic
//
// The header is validated and stripped by the loader; Image.Data holds only
// the bytes to program, starting at flash offset 0.
//
// # Usage
//
// Load an image from disk:
//
//	img, err := firmware.Parse("app.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Image size: %d bytes\n", img.Size())
//
// Load from an io.Reader:
//
//	img, err := firmware.ParseReader(resp.Body)
//
// # Error Handling
//
// A file that is too short to hold the header, whose header does not match
// the magic, or that carries no image bytes after the header is rejected with
// an *ImageFormatError. Nothing is sent to a device for such a file.
package firmware
