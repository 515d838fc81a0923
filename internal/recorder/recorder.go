// Package recorder writes placement attempts to zstd-compressed JSONL
// files, one attempt per line. The files are an append-only diagnostic
// trail: tuning snap feel and hook behavior is much easier with a
// replayable record of what the player tried.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/erin-fowler/buildmode/internal/game/placement"
)

// Recorder is a placement.AttemptSink backed by a compressed JSONL
// file. It is driven from the simulation loop and is not safe for
// concurrent use.
type Recorder struct {
	path   string
	file   *os.File
	zw     *zstd.Encoder
	buf    *bufio.Writer
	closed bool
}

// New creates a recorder writing to a timestamped file under dir,
// creating dir if needed.
//
// Postcondition: the caller must Close the recorder to flush the
// compressed stream.
func New(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("recorder: creating %q: %w", dir, err)
	}
	name := fmt.Sprintf("placements-%s.jsonl.zst", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: creating %q: %w", path, err)
	}
	zw, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("recorder: zstd writer: %w", err)
	}
	return &Recorder{
		path: path,
		file: file,
		zw:   zw,
		buf:  bufio.NewWriter(zw),
	}, nil
}

// Path returns the file the recorder is writing to.
func (r *Recorder) Path() string { return r.path }

// Record appends one attempt as a JSON line.
func (r *Recorder) Record(a placement.Attempt) error {
	if r.closed {
		return fmt.Errorf("recorder: closed")
	}
	line, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("recorder: encoding attempt: %w", err)
	}
	if _, err := r.buf.Write(line); err != nil {
		return fmt.Errorf("recorder: writing attempt: %w", err)
	}
	if err := r.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("recorder: writing attempt: %w", err)
	}
	return nil
}

// Close flushes and closes the compressed stream. It is safe to call
// more than once.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.buf.Flush(); err != nil {
		_ = r.zw.Close()
		_ = r.file.Close()
		return fmt.Errorf("recorder: flushing %q: %w", r.path, err)
	}
	if err := r.zw.Close(); err != nil {
		_ = r.file.Close()
		return fmt.Errorf("recorder: closing zstd stream: %w", err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("recorder: closing %q: %w", r.path, err)
	}
	return nil
}

// ReadAll decodes every attempt from a recorded file, in order.
func ReadAll(path string) ([]placement.Attempt, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("recorder: opening %q: %w", path, err)
	}
	defer file.Close()

	zr, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("recorder: zstd reader: %w", err)
	}
	defer zr.Close()

	var attempts []placement.Attempt
	scanner := bufio.NewScanner(zr)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var a placement.Attempt
		if err := json.Unmarshal(line, &a); err != nil {
			return nil, fmt.Errorf("recorder: decoding line %d: %w", len(attempts)+1, err)
		}
		attempts = append(attempts, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("recorder: reading %q: %w", path, err)
	}
	return attempts, nil
}
