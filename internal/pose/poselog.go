package pose

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LogExtension is the extension for form.report pose log files.
const LogExtension = ".poselog"

// LogHeader is the first line of a pose log and carries recording metadata.
type LogHeader struct {
	Version      string `json:"version"`
	ExerciseType string `json:"exercise_type"`
	CreatedMs    int64  `json:"created_ms"`
	FrameRateHz  int    `json:"frame_rate_hz"`
	TotalFrames  int    `json:"total_frames,omitempty"`
}

// LogWriter writes a pose log: one JSON header line followed by one JSON
// frame per line.
type LogWriter struct {
	f      *os.File
	w      *bufio.Writer
	frames int
}

// NewLogWriter creates a pose log at path and writes the header line.
func NewLogWriter(path string, header LogHeader) (*LogWriter, error) {
	if ext := filepath.Ext(path); ext != LogExtension {
		return nil, fmt.Errorf("pose log must have %s extension, got %q", LogExtension, ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create pose log: %w", err)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	if err := enc.Encode(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write pose log header: %w", err)
	}
	return &LogWriter{f: f, w: w}, nil
}

// WriteFrame appends one frame to the log.
func (lw *LogWriter) WriteFrame(frame Frame) error {
	if err := json.NewEncoder(lw.w).Encode(frame); err != nil {
		return fmt.Errorf("write frame %d: %w", lw.frames, err)
	}
	lw.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (lw *LogWriter) Frames() int { return lw.frames }

// Close flushes and closes the log file.
func (lw *LogWriter) Close() error {
	if err := lw.w.Flush(); err != nil {
		lw.f.Close()
		return fmt.Errorf("flush pose log: %w", err)
	}
	return lw.f.Close()
}

// LogReader reads a pose log written by LogWriter.
type LogReader struct {
	f      *os.File
	sc     *bufio.Scanner
	header LogHeader
}

// OpenLog opens a pose log and parses its header line.
func OpenLog(path string) (*LogReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pose log: %w", err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		f.Close()
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read pose log header: %w", err)
		}
		return nil, fmt.Errorf("pose log %s is empty", path)
	}
	var header LogHeader
	if err := json.Unmarshal(sc.Bytes(), &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("parse pose log header: %w", err)
	}
	return &LogReader{f: f, sc: sc, header: header}, nil
}

// Header returns the log's metadata header.
func (lr *LogReader) Header() LogHeader { return lr.header }

// Next returns the next frame in the log, or io.EOF when exhausted.
func (lr *LogReader) Next() (Frame, error) {
	if !lr.sc.Scan() {
		if err := lr.sc.Err(); err != nil {
			return Frame{}, fmt.Errorf("read pose log: %w", err)
		}
		return Frame{}, io.EOF
	}
	var frame Frame
	if err := json.Unmarshal(lr.sc.Bytes(), &frame); err != nil {
		return Frame{}, fmt.Errorf("parse frame: %w", err)
	}
	return frame, nil
}

// Close closes the underlying file.
func (lr *LogReader) Close() error { return lr.f.Close() }
