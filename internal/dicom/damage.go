package dicom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// ErrNoPixelData is returned by TruncatePixelData on files without pixels.
var ErrNoPixelData = errors.New("no pixel data element")

// TruncatePixelData cuts a written file in the middle of its pixel data.
// The header still parses, but decoding the image fails, which is how
// interrupted transfers look on disk. The file must use explicit VR little
// endian, as Synthesize writes it.
func TruncatePixelData(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file for truncation: %w", err)
	}
	start, length, ok := findPixelData(data)
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNoPixelData)
	}
	cut := start + int(length)/2
	if cut > len(data) {
		cut = len(data)
	}
	return os.WriteFile(path, data[:cut], 0644)
}

// findPixelData returns the offset of the (7FE0,0010) value and its
// declared length.
func findPixelData(data []byte) (start int, length uint32, ok bool) {
	for i := 0; i <= len(data)-12; i++ {
		if data[i] != 0xE0 || data[i+1] != 0x7F || data[i+2] != 0x10 || data[i+3] != 0x00 {
			continue
		}
		vr := string(data[i+4 : i+6])
		if vr != "OW" && vr != "OB" {
			continue
		}
		return i + 12, binary.LittleEndian.Uint32(data[i+8 : i+12]), true
	}
	return 0, 0, false
}
