package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/security"
)

// ScorePlotter records frame evaluation results over a run for offline
// visualization. It accumulates per-frame score and angle series that
// can be plotted as PNGs after a replay.
type ScorePlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string
	exercise  engine.ExerciseType

	samples []ScoreSample
}

// ScoreSample represents one evaluated frame.
type ScoreSample struct {
	FrameIdx    int
	TimestampMs int64
	Score       float64
	Phase       engine.Phase
	RepCount    int
	Angles      map[string]float64
}

// NewScorePlotter creates a plotter for the given exercise.
func NewScorePlotter(exercise engine.ExerciseType) *ScorePlotter {
	return &ScorePlotter{exercise: exercise}
}

// Start initializes the plotter for a new run.
// outputDir should be a timestamped directory (e.g., "plots/session-001/20260829_101500").
func (sp *ScorePlotter) Start(outputDir string) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	sp.outputDir = outputDir
	sp.enabled = true
	sp.samples = nil
	return nil
}

// Stop disables sampling. Call GeneratePlots() to produce output files.
func (sp *ScorePlotter) Stop() {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (sp *ScorePlotter) IsEnabled() bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.enabled
}

// Sample captures one evaluated frame. Call this once per frame during
// replay or live processing.
func (sp *ScorePlotter) Sample(result engine.FrameEvaluationResult) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if !sp.enabled {
		return
	}

	angles := make(map[string]float64, len(result.Angles))
	for k, v := range result.Angles {
		angles[k] = v
	}
	sp.samples = append(sp.samples, ScoreSample{
		FrameIdx:    len(sp.samples),
		TimestampMs: result.TimestampMs,
		Score:       result.Score,
		Phase:       result.Phase,
		RepCount:    result.RepCount,
		Angles:      angles,
	})
}

// SampleCount returns the number of frames recorded so far.
func (sp *ScorePlotter) SampleCount() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return len(sp.samples)
}

// GetOutputDir returns the current output directory for plots.
func (sp *ScorePlotter) GetOutputDir() string {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.outputDir
}

// GeneratePlots creates PNG files for the score series and each angle
// series. Returns the number of plots generated and any error.
func (sp *ScorePlotter) GeneratePlots() (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(sp.samples) == 0 {
		return 0, nil
	}

	plotCount := 0

	pScore := plot.New()
	pScore.Title.Text = fmt.Sprintf("%s - Frame Score", sp.exercise)
	pScore.X.Label.Text = "Frame"
	pScore.Y.Label.Text = "Score"
	pScore.Y.Min = 0
	pScore.Y.Max = 100

	scorePts := make(plotter.XYs, 0, len(sp.samples))
	for _, s := range sp.samples {
		scorePts = append(scorePts, plotter.XY{X: float64(s.FrameIdx), Y: s.Score})
	}
	scoreLine, err := plotter.NewLine(scorePts)
	if err != nil {
		return plotCount, err
	}
	scoreLine.Width = vg.Points(1)
	scoreLine.Color = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}
	pScore.Add(scoreLine)

	scoreFile := filepath.Join(sp.outputDir, "score.png")
	if err := pScore.Save(14*vg.Inch, 6*vg.Inch, scoreFile); err != nil {
		return plotCount, fmt.Errorf("save score plot: %w", err)
	}
	plotCount++

	// One angle plot, all series overlaid
	angleKeys := map[string]bool{}
	for _, s := range sp.samples {
		for k := range s.Angles {
			angleKeys[k] = true
		}
	}
	if len(angleKeys) > 0 {
		pAngle := plot.New()
		pAngle.Title.Text = fmt.Sprintf("%s - Joint Angles", sp.exercise)
		pAngle.X.Label.Text = "Frame"
		pAngle.Y.Label.Text = "Angle (deg)"

		var sortedKeys []string
		for k := range angleKeys {
			sortedKeys = append(sortedKeys, k)
		}
		sort.Strings(sortedKeys)

		palette := []color.Color{
			color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255},
			color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 255},
			color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 255},
			color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255},
			color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 255},
			color.RGBA{R: 0x8c, G: 0x56, B: 0x4b, A: 255},
		}

		for i, key := range sortedKeys {
			pts := make(plotter.XYs, 0, len(sp.samples))
			for _, s := range sp.samples {
				if v, ok := s.Angles[key]; ok {
					pts = append(pts, plotter.XY{X: float64(s.FrameIdx), Y: v})
				}
			}
			if len(pts) == 0 {
				continue
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return plotCount, err
			}
			line.Width = vg.Points(1)
			line.Color = palette[i%len(palette)]
			pAngle.Add(line)
			pAngle.Legend.Add(key, line)
		}
		pAngle.Legend.Top = true
		pAngle.Legend.Left = false
		pAngle.Legend.XOffs = -10
		pAngle.Legend.YOffs = -10

		angleFile := filepath.Join(sp.outputDir, "angles.png")
		if err := pAngle.Save(14*vg.Inch, 6*vg.Inch, angleFile); err != nil {
			return plotCount, fmt.Errorf("save angle plot: %w", err)
		}
		plotCount++
	}

	return plotCount, nil
}

// FormatTimestamp generates a timestamp string for directory naming.
func FormatTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// MakePlotOutputDir creates a timestamped output directory for plots.
// For pose log replays: plots/<log_basename>/<timestamp>
// For live data: plots/live_<timestamp>
func MakePlotOutputDir(baseDir, logFile string) string {
	ts := FormatTimestamp(time.Now())
	if logFile != "" {
		base := filepath.Base(logFile)
		ext := filepath.Ext(base)
		name := security.SanitizeFilename(base[:len(base)-len(ext)])
		return filepath.Join(baseDir, name, ts)
	}
	return filepath.Join(baseDir, "live_"+ts)
}
