package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/promoreel/internal/config"
	"github.com/ivlev/promoreel/internal/renderer"
	"github.com/ivlev/promoreel/internal/system"
)

// VideoEncoder writes a clip to a video file.
type VideoEncoder interface {
	Encode(ctx context.Context, clip renderer.Clip, outPath string, params config.EncodeParams) error
}

// FFmpegEncoder pipes raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	FFmpegPath string
	Logger     zerolog.Logger
}

func (e *FFmpegEncoder) binary() string {
	if e.FFmpegPath == "" {
		return "ffmpeg"
	}
	return e.FFmpegPath
}

// ResolveCodec turns "auto" into the best H.264 encoder ffmpeg offers.
func (e *FFmpegEncoder) ResolveCodec(codec string) string {
	if codec == "" || codec == "auto" {
		return system.GetBestH264Encoder(e.binary())
	}
	return codec
}

// Encode renders every frame of clip and writes outPath. The file only appears
// once ffmpeg has exited cleanly; a failed run leaves nothing behind.
func (e *FFmpegEncoder) Encode(ctx context.Context, clip renderer.Clip, outPath string, params config.EncodeParams) error {
	params.Codec = e.ResolveCodec(params.Codec)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	tmpPath := outPath + ".part"
	defer os.Remove(tmpPath)

	args := BuildArgs(params, tmpPath)
	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	frames := FrameCount(clip.Duration(), params.FPS)
	e.Logger.Info().
		Str("output", filepath.Base(outPath)).
		Str("codec", params.Codec).
		Int("frames", frames).
		Msg("encoding")

	writeErr := e.writeFrames(ctx, stdin, clip, frames, params)
	stdin.Close()
	waitErr := cmd.Wait()

	if writeErr != nil || waitErr != nil {
		return fmt.Errorf("ffmpeg: %w (%s)", errors.Join(writeErr, waitErr), tail(stderr.String(), 400))
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("finalize %s: %w", outPath, err)
	}
	return nil
}

func (e *FFmpegEncoder) writeFrames(ctx context.Context, w io.Writer, clip renderer.Clip, frames int, params config.EncodeParams) error {
	frame := system.GetImage(image.Rect(0, 0, params.Width, params.Height))
	defer system.PutImage(frame)

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		clip.RenderFrame(frame, float64(i)/float64(params.FPS))
		if err := writeRawRGBA(w, frame); err != nil {
			return fmt.Errorf("write raw error at frame %d: %w", i, err)
		}
		if params.FPS > 0 && i%(params.FPS*5) == 0 {
			e.Logger.Debug().Int("frame", i).Int("of", frames).Msg("progress")
		}
	}
	return nil
}

// FrameCount is the number of frames needed to cover duration seconds.
func FrameCount(duration float64, fps int) int {
	return int(math.Round(duration * float64(fps)))
}

// BuildArgs returns the ffmpeg arguments for a raw RGBA stream on stdin.
func BuildArgs(p config.EncodeParams, outPath string) []string {
	input := ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", p.Width, p.Height),
		"r":       strconv.Itoa(p.FPS),
	}

	output := ffmpeg.KwArgs{
		"c:v":      p.Codec,
		"pix_fmt":  "yuv420p",
		"r":        strconv.Itoa(p.FPS),
		"an":       "",
		"movflags": "+faststart",
		"f":        "mp4",
	}
	if p.Threads > 0 {
		output["threads"] = strconv.Itoa(p.Threads)
	}

	// quality depends on the encoder
	switch p.Codec {
	case "h264_videotoolbox":
		output["b:v"] = fmt.Sprintf("%dk", p.Quality*100)
	case "h264_nvenc":
		output["cq"] = strconv.Itoa(p.Quality)
	default: // libx264
		output["crf"] = strconv.Itoa(p.Quality)
		if p.Preset != "" {
			output["preset"] = p.Preset
		}
	}

	return ffmpeg.Input("pipe:", input).
		Output(outPath, output).
		OverWriteOutput().
		GetArgs()
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Probe returns the duration in seconds of an encoded file.
func Probe(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return parseProbeDuration(out)
}

func parseProbeDuration(out string) (float64, error) {
	var info struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return 0, fmt.Errorf("parse probe output: %w", err)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(info.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", info.Format.Duration, err)
	}
	return d, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
