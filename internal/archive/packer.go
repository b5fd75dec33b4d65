package archive

import (
	"errors"
	"fmt"
)

// DefaultCapacity is the most files an archive may carry. Empirically the
// flash drive (or the Tek behind it) misbehaves somewhere above 250 file
// numbers, so sequences are chopped well short of that. Configurable, not
// architectural.
const DefaultCapacity = 226

// Packing errors.
var (
	// ErrCapacity indicates a non-positive files-per-archive cap.
	ErrCapacity = errors.New("archive: capacity must be positive")

	// ErrMissingFile indicates a gap in the frame-file sequence. Packing
	// validates the whole sequence before writing anything.
	ErrMissingFile = errors.New("archive: missing file in sequence")
)

// File is one member of a frame-file sequence. Files are identified by
// position; Name is the descriptive portion of the flash drive filename
// (e.g. "DATA Frame 12") and travels with the file through renumbering.
type File struct {
	Name string
	Data []byte
}

// Split partitions an ordered file sequence into archives of at most cap
// files each, greedily: every archive but possibly the last is full. Within
// each archive, files keep their relative order and are later renumbered
// from 1. The sequence is validated in full before anything is returned.
func Split(files []File, cap int) ([][]File, error) {
	if cap <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrCapacity, cap)
	}
	for i, f := range files {
		if f.Data == nil {
			return nil, fmt.Errorf("%w: position %d (%s)", ErrMissingFile, i, f.Name)
		}
	}

	var chunks [][]File
	for start := 0; start < len(files); start += cap {
		end := start + cap
		if end > len(files) {
			end = len(files)
		}
		chunks = append(chunks, files[start:end])
	}
	return chunks, nil
}

// Suffix returns the archive name suffix for chunk index i:
// a, b, ..., z, aa, ab, ..., zz, aaa, ...
func Suffix(i int) string {
	length := 1
	count := 26
	for i >= count {
		i -= count
		length++
		count *= 26
	}
	buf := make([]byte, length)
	for pos := length - 1; pos >= 0; pos-- {
		buf[pos] = byte('a' + i%26)
		i /= 26
	}
	return string(buf)
}
