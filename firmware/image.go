package firmware

// Image is a firmware payload ready to be written to flash.
type Image struct {
	// Data is the image body with the magic header removed
	Data []byte
}

// Size returns the number of bytes to program.
func (img *Image) Size() int {
	return len(img.Data)
}

// ChunkCount returns how many write commands an image needs at the given
// chunk size.
func (img *Image) ChunkCount(chunkSize int) int {
	if chunkSize <= 0 {
		return 0
	}
	return (len(img.Data) + chunkSize - 1) / chunkSize
}
