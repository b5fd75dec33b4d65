// Package system probes the host for the resources a render run needs:
// CPU count for worker sizing, ffmpeg availability, and hardware encoders.
package system

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Workers picks a worker count for the parallel compose stage: one per
// logical CPU, as reported by gopsutil, falling back to runtime.NumCPU.
func Workers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// InitResourceLimits raises the open-file limit so large animations don't
// run out of descriptors while archives and pipes are in flight.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read the open-file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise the open-file limit: %v", err)
	}
}

// CheckFFmpeg verifies that ffmpeg is on PATH.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found in PATH (required for video output): %w", err)
	}
	return nil
}

// GetBestH264Encoder probes ffmpeg for hardware H.264 encoders, preferring
// VideoToolbox (macOS) then NVENC, and falling back to software x264.
func GetBestH264Encoder() string {
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// DefaultQuality picks a sensible quality setting for an encoder: CRF for
// x264, CQ for NVENC, and a bitrate multiplier for VideoToolbox.
func DefaultQuality(encoderName string) int {
	switch encoderName {
	case "h264_videotoolbox":
		return 75
	case "h264_nvenc":
		return 28
	default:
		return 23
	}
}
