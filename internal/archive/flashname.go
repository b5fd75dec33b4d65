// Package archive partitions ordered frame-file sequences into
// capacity-bounded ZIP archives whose members use the 4050 flash drive
// naming scheme, and re-chunks existing archives under the same rules.
package archive

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The flash drive names files the way TLIST lists them:
//
//	11     ASCII   PROG Pi to length     3000
//
// File number in bytes 0-6, type in 7-14, name in 15-35, then a space and
// the file size in digits. The size is part of the name, so replacing a
// file with one of a different length leaves two SD-card files claiming the
// same file number. Murphy says the drive loads the one you didn't want.
var flashNameRe = regexp.MustCompile(`^(\d+)\s+([A-Z]+)\s+(.*?)\s+(\d+)$`)

// FlashName is a decoded flash drive filename.
type FlashName struct {
	Number int    // tape file number
	Type   string // usually ASCII, BINARY, or LAST
	Name   string // usually starts with PROG or DATA
	Size   int
}

// ParseFlashName decodes a flash drive filename.
func ParseFlashName(filename string) (FlashName, error) {
	m := flashNameRe.FindStringSubmatch(strings.TrimRight(filename, " "))
	if m == nil {
		return FlashName{}, fmt.Errorf(
			"filename %q has sensibly abstained from adhering to the flash drive filename format",
			filename)
	}
	number, _ := strconv.Atoi(m[1])
	size, _ := strconv.Atoi(m[4])
	return FlashName{Number: number, Type: m[2], Name: m[3], Size: size}, nil
}

// BuildFlashName encodes a flash drive filename.
func BuildFlashName(number int, fileType, name string, size int) (string, error) {
	if number < 1 || size < 0 {
		return "", fmt.Errorf(
			"archive: flash drive file number must be positive and size non-negative (got %d, %d)",
			number, size)
	}
	return fmt.Sprintf("%-7d%-8s%-21s %d", number, fileType, name, size), nil
}
