// Command coach replays a recorded pose log through the form-analysis
// engine, delivering coaching feedback and persisting the session
// summary for later review.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/formsense-data/form.report/internal/config"
	"github.com/formsense-data/form.report/internal/engine"
	"github.com/formsense-data/form.report/internal/feedback"
	"github.com/formsense-data/form.report/internal/monitor"
	"github.com/formsense-data/form.report/internal/pose"
	"github.com/formsense-data/form.report/internal/session"
	"github.com/formsense-data/form.report/internal/storage/sqlite"
	"github.com/formsense-data/form.report/internal/version"
)

var (
	exerciseName = flag.String("exercise", "", "exercise to evaluate (defaults to the log header's exercise)")
	logPath      = flag.String("log", "", "path to the .poselog recording to replay")
	dbFile       = flag.String("db", "sessions.db", "path to the SQLite session database")
	listen       = flag.String("listen", ":8080", "HTTP listen address (empty disables the monitor)")
	configPath   = flag.String("config", "", "path to a tuning config JSON (default: embedded defaults)")
	realtime     = flag.Bool("realtime", false, "replay at the recorded frame rate instead of as fast as possible")
	voice        = flag.Bool("voice", true, "print voice feedback to the console")
	plotDir      = flag.String("plots", "", "directory for score/angle plots (empty disables plotting)")
	serve        = flag.Bool("serve", false, "keep the HTTP server running after the replay finishes")
	showVersion  = flag.Bool("version", false, "print version information and exit")
)

// consoleSpeaker satisfies feedback.Speaker by logging utterances. A
// platform TTS backend would replace this on devices with audio out.
type consoleSpeaker struct {
	logger *log.Logger
}

func (s *consoleSpeaker) Initialize() error { return nil }

func (s *consoleSpeaker) Speak(text string) error {
	s.logger.Printf("🔊 %s", text)
	return nil
}

func (s *consoleSpeaker) Stop() error             { return nil }
func (s *consoleSpeaker) SetRate(float64) error   { return nil }
func (s *consoleSpeaker) SetVolume(float64) error { return nil }
func (s *consoleSpeaker) IsAvailable() bool       { return true }
func (s *consoleSpeaker) Dispose() error          { return nil }

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("form-coach %s (commit %s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(0)
	}

	if *logPath == "" {
		log.Fatal("missing required -log flag")
	}

	var tuning *config.TuningConfig
	if *configPath != "" {
		loaded, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("load tuning config: %v", err)
		}
		tuning = loaded
	} else {
		tuning = config.MustLoadDefaultConfig()
	}
	if err := tuning.Validate(); err != nil {
		log.Fatalf("invalid tuning config: %v", err)
	}

	reader, err := pose.OpenLog(*logPath)
	if err != nil {
		log.Fatalf("open pose log: %v", err)
	}
	defer reader.Close()
	header := reader.Header()

	name := *exerciseName
	if name == "" {
		name = header.ExerciseType
	}
	exercise, err := engine.ParseExerciseType(name)
	if err != nil {
		log.Fatalf("select exercise: %v", err)
	}

	analyzer, err := engine.NewAnalyzer(exercise, tuning)
	if err != nil {
		log.Fatalf("create analyzer: %v", err)
	}

	var speaker feedback.Speaker = feedback.NullSpeaker{}
	if *voice {
		speaker = &consoleSpeaker{logger: log.Default()}
	}
	fb := feedback.NewManager(feedback.ManagerConfigFromTuning(tuning, speaker))
	if err := fb.Start(); err != nil {
		log.Fatalf("start feedback manager: %v", err)
	}
	defer fb.Dispose()

	db, err := sqlite.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("open session db: %v", err)
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var wg sync.WaitGroup
	if *listen != "" {
		ws := monitor.NewWebServer(monitor.WebServerConfig{
			Address:  *listen,
			DB:       db,
			Feedback: fb,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ws.Start(ctx); err != nil {
				log.Printf("web server: %v", err)
			}
		}()
	}

	var plotter *monitor.ScorePlotter
	if *plotDir != "" {
		plotter = monitor.NewScorePlotter(exercise)
		outDir := monitor.MakePlotOutputDir(*plotDir, *logPath)
		if err := plotter.Start(outDir); err != nil {
			log.Fatalf("start plotter: %v", err)
		}
	}

	summary, err := replay(ctx, reader, analyzer, fb, plotter, exercise)
	if err != nil {
		if summary == nil || !errors.Is(err, context.Canceled) {
			log.Fatalf("replay: %v", err)
		}
		// Interrupted mid-replay: the aggregator was finalized with
		// whatever frames made it through, so keep the partial session.
		log.Printf("replay interrupted; saving partial session")
	}

	if err := db.SaveSession(summary); err != nil {
		log.Fatalf("save session: %v", err)
	}
	log.Printf("session %s saved: %d reps, avg score %.1f", summary.SessionID, summary.TotalReps, summary.AvgScore)
	for _, ic := range summary.IssueFrequency {
		log.Printf("  issue %-20s %d frames", ic.Type, ic.Count)
	}

	if plotter != nil {
		plotter.Stop()
		count, err := plotter.GeneratePlots()
		if err != nil {
			log.Printf("generate plots: %v", err)
		} else if count > 0 {
			log.Printf("wrote %d plot(s) to %s", count, plotter.GetOutputDir())
		}
	}

	fb.Stop()

	if *serve && *listen != "" {
		log.Printf("replay finished; serving on %s until interrupted", *listen)
		<-ctx.Done()
	}
	cancel()
	wg.Wait()
}

// replay pushes every frame of the recording through the analyzer and
// returns the finalized session summary.
func replay(
	ctx context.Context,
	reader *pose.LogReader,
	analyzer *engine.Analyzer,
	fb *feedback.Manager,
	plotter *monitor.ScorePlotter,
	exercise engine.ExerciseType,
) (*session.SessionSummary, error) {
	header := reader.Header()
	frameInterval := time.Duration(0)
	if *realtime && header.FrameRateHz > 0 {
		frameInterval = time.Duration(float64(time.Second) / float64(header.FrameRateHz))
	}

	agg := session.NewAggregator(exercise)
	frames := 0
	for {
		select {
		case <-ctx.Done():
			summary := agg.Finalize()
			return &summary, ctx.Err()
		default:
		}

		frame, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", frames, err)
		}

		result := analyzer.EvaluateFrame(frame)
		fb.OfferResult(result)
		agg.Observe(result)
		if plotter != nil {
			plotter.Sample(result)
		}
		frames++

		if frameInterval > 0 {
			time.Sleep(frameInterval)
		}
	}
	log.Printf("replayed %d frames from %s", frames, *logPath)

	summary := agg.Finalize()
	return &summary, nil
}
