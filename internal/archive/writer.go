package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// WriteArchives packs a file sequence into capacity-bounded ZIP archives
// named prefix+a.zip, prefix+b.zip and so on. Within each archive, members
// are renumbered to a contiguous 1-based sequence. The sequence is
// validated before the first archive is opened; a failure mid-write leaves
// every previously closed archive intact.
func WriteArchives(prefix string, files []File, cap int) ([]string, error) {
	chunks, err := Split(files, cap)
	if err != nil {
		return nil, err
	}

	var written []string
	for i, chunk := range chunks {
		path := fmt.Sprintf("%s%s.zip", prefix, Suffix(i))
		if err := writeArchive(path, chunk); err != nil {
			return written, fmt.Errorf("archive %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// writeArchive creates one ZIP archive holding the chunk's files renumbered
// 1..len(chunk). Frame data is already device-packed, so members are stored
// without compression.
func writeArchive(path string, chunk []File) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	for i, member := range chunk {
		name, err := BuildFlashName(i+1, "BINARY", member.Name, len(member.Data))
		if err != nil {
			zw.Close()
			f.Close()
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			zw.Close()
			f.Close()
			return err
		}
		if _, err := w.Write(member.Data); err != nil {
			zw.Close()
			f.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteSingle creates a ZIP archive holding one device file stored at the
// given flash drive file number. One-shot plot conversions land on the drive
// beside whatever files already live there, so unlike WriteArchives the
// number is the caller's to choose and nothing is renumbered.
func WriteSingle(path string, number int, name string, data []byte) error {
	member, err := BuildFlashName(number, "BINARY", name, len(data))
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: member, Method: zip.Store})
	if err == nil {
		_, err = w.Write(data)
	}
	if err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadSequence loads the frame files of an existing animation archive,
// ordered by their flash drive file numbers. Player program files (type
// ASCII, "PROG …" names) are skipped: re-chunked archives carry frames
// only, and a player can be regenerated separately. The returned count of
// skipped members lets callers mention the omission.
func ReadSequence(path string) ([]File, int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, 0, err
	}
	defer zr.Close()

	type numbered struct {
		number int
		file   File
	}
	var frames []numbered
	skipped := 0

	for _, member := range zr.File {
		fn, err := ParseFlashName(member.Name)
		if err != nil {
			return nil, 0, err
		}
		if strings.HasPrefix(fn.Name, "PROG") || fn.Type == "LAST" {
			skipped++
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, 0, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("read %s: %w", member.Name, err)
		}
		frames = append(frames, numbered{number: fn.Number, file: File{Name: fn.Name, Data: data}})
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].number < frames[j].number })

	files := make([]File, len(frames))
	for i, f := range frames {
		files[i] = f.file
	}
	return files, skipped, nil
}
