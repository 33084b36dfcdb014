package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
)

// maxEncoderThreads matches the thread hint the videos were tuned with.
const maxEncoderThreads = 4

// EncoderThreads is the default -threads hint: physical cores, at most 4.
func EncoderThreads() int {
	n, err := cpu.Counts(false)
	if err != nil || n <= 0 {
		return maxEncoderThreads
	}
	return min(n, maxEncoderThreads)
}

// CheckFFmpeg verifies that the ffmpeg binary at path runs.
func CheckFFmpeg(ctx context.Context, path string) error {
	out, err := exec.CommandContext(ctx, path, "-version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg not usable at %q: %w", path, err)
	}
	if !strings.Contains(string(out), "ffmpeg version") {
		return fmt.Errorf("%q does not look like ffmpeg", path)
	}
	return nil
}

var (
	encoderOnce sync.Once
	encoderList string
)

func listEncoders(ffmpegPath string) string {
	encoderOnce.Do(func() {
		out, err := exec.Command(ffmpegPath, "-hide_banner", "-encoders").CombinedOutput()
		if err == nil {
			encoderList = string(out)
		}
	})
	return encoderList
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg offers one,
// falling back to libx264.
func GetBestH264Encoder(ffmpegPath string) string {
	// Priority:
	// 1. macOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. software (libx264)
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	list := listEncoders(ffmpegPath)
	for _, enc := range encoders {
		if strings.Contains(list, enc) {
			return enc
		}
	}
	return "libx264"
}
