package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/ivlev/promoreel/internal/director"
)

// Report collects the outcome of one batch run.
type Report struct {
	RunID    string    `json:"run_id"`
	Campaign string    `json:"campaign"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Videos   []*Result `json:"videos"`
}

func (r *Report) Failed() int {
	n := 0
	for _, v := range r.Videos {
		if !v.OK() {
			n++
		}
	}
	return n
}

// RunBatch generates every script in order. A failing or panicking video is
// logged and recorded; the remaining videos still run.
func (g *Generator) RunBatch(ctx context.Context, scripts []*director.Script) *Report {
	rep := &Report{
		RunID:    uuid.NewString(),
		Campaign: g.Campaign.Name,
		Started:  time.Now().UTC(),
	}

	for i, s := range scripts {
		if ctx.Err() != nil {
			rep.Videos = append(rep.Videos, failed(s, ctx.Err()))
			continue
		}
		g.logger.Info().
			Str("video", s.Name).
			Msg(fmt.Sprintf("[%d/%d] %s", i+1, len(scripts), s.Title))

		res := g.safeGenerate(ctx, s)
		if res.Err != nil {
			g.logger.Error().Err(res.Err).Str("video", s.Name).Msg("video failed")
		}
		rep.Videos = append(rep.Videos, res)
	}

	rep.Finished = time.Now().UTC()
	return rep
}

func (g *Generator) safeGenerate(ctx context.Context, s *director.Script) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Debug().Str("video", s.Name).Msg(string(debug.Stack()))
			res = failed(s, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := g.Generate(ctx, s)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
	}
	return res
}

func failed(s *director.Script, err error) *Result {
	return &Result{Name: s.Name, Title: s.Title, Batch: s.Batch, Err: err, Error: err.Error()}
}

// WriteManifest stores the report as manifest.json in dir.
func (r *Report) WriteManifest(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF4D6D"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#04B575"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(0, 1)
)

// Summary renders the end-of-run table printed to the terminal.
func (r *Report) Summary() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s: %d videos, %d failed", r.Campaign, len(r.Videos), r.Failed())))
	b.WriteString("\n")

	for _, v := range r.Videos {
		if v.OK() {
			line := fmt.Sprintf("✓ %-28s %6.2fs  %d scenes", v.Name, v.Duration, v.ScenesKept)
			if v.ScenesSkipped > 0 {
				line += fmt.Sprintf(", %d skipped", v.ScenesSkipped)
			}
			b.WriteString(okStyle.Render(line))
			if v.Output != "" {
				b.WriteString(" " + infoStyle.Render(v.Output))
			}
			if v.Error != "" {
				b.WriteString("\n  " + errStyle.Render(v.Error))
			}
		} else {
			b.WriteString(errStyle.Render(fmt.Sprintf("✗ %-28s %s", v.Name, v.Error)))
		}
		b.WriteString("\n")
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("run %s in %s", r.RunID, r.Finished.Sub(r.Started).Round(time.Millisecond))))
	return boxStyle.Render(b.String())
}
