// Command gen-poselog generates sample .poselog recordings for testing replay.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/formsense-data/form.report/internal/pose"
	"github.com/formsense-data/form.report/internal/security"
)

func main() {
	output := flag.String("o", "sample.poselog", "output path")
	exercise := flag.String("exercise", "squat", "exercise to generate (squat, bicep_curl, lateral_raise, shoulder_press, push_up)")
	reps := flag.Int("reps", 5, "number of reps")
	flaw := flag.String("flaw", "", "form flaw to inject (squat: shallow, knee_forward; bicep_curl: partial; lateral_raise: sway; shoulder_press: arch; push_up: sag)")
	jitter := flag.Float64("jitter", 0.002, "landmark position noise (stddev, normalized coords)")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if err := security.ValidateOutputPath(*output); err != nil {
		log.Fatalf("invalid output path: %v", err)
	}

	gen := pose.NewSyntheticGenerator(*seed)
	gen.Jitter = *jitter

	var frames []pose.Frame
	switch *exercise {
	case "squat":
		frames = gen.SquatReps(*reps, pose.SquatFlaw(*flaw))
	case "bicep_curl":
		frames = gen.CurlReps(*reps, pose.CurlFlaw(*flaw))
	case "lateral_raise":
		frames = gen.RaiseReps(*reps, pose.RaiseFlaw(*flaw))
	case "shoulder_press":
		frames = gen.PressReps(*reps, pose.PressFlaw(*flaw))
	case "push_up":
		frames = gen.PushUpReps(*reps, pose.PushUpFlaw(*flaw))
	default:
		log.Fatalf("unsupported exercise %q", *exercise)
	}

	writer, err := pose.NewLogWriter(*output, pose.LogHeader{
		Version:      "1",
		ExerciseType: *exercise,
		CreatedMs:    time.Now().UnixMilli(),
		FrameRateHz:  int(gen.FrameRateHz),
		TotalFrames:  len(frames),
	})
	if err != nil {
		log.Fatalf("create log: %v", err)
	}
	defer writer.Close()

	for _, frame := range frames {
		if err := writer.WriteFrame(frame); err != nil {
			log.Fatalf("write frame: %v", err)
		}
	}

	log.Printf("✓ Created: %s (%d frames, %d reps of %s)", *output, writer.Frames(), *reps, *exercise)
}
