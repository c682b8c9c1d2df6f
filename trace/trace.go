// Package trace records per-tick agent snapshots as zstd-compressed JSON
// lines.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Agent struct {
	Name         string  `json:"name"`
	ID           string  `json:"id"`
	State        string  `json:"state"`
	Target       string  `json:"target"`
	Position     Vec     `json:"pos"`
	Yaw          float64 `json:"yaw"`
	Speed        float64 `json:"speed"`
	Satisfaction float64 `json:"satisfaction"`
	Health       int     `json:"health"`
}

type Transition struct {
	Agent string `json:"agent"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Entry is one tick.
type Entry struct {
	Tick        uint64       `json:"tick"`
	Time        float64      `json:"time"`
	Agents      []Agent      `json:"agents"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// Recorder writes entries to an underlying writer. Close flushes the
// compressed stream; it does not close the writer.
type Recorder struct {
	mu  sync.Mutex
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

func NewRecorder(w io.Writer) (*Recorder, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	return &Recorder{enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

func (r *Recorder) Write(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return fmt.Errorf("trace: write after close")
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := r.w.Write(b); err != nil {
		return err
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return err
	}
	r.n++
	return nil
}

// Len returns the number of entries written.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enc == nil {
		return nil
	}
	err := r.w.Flush()
	if cerr := r.enc.Close(); err == nil {
		err = cerr
	}
	r.enc = nil
	return err
}

// Read decodes every entry in a recorded stream, calling fn in order.
func Read(rd io.Reader, fn func(Entry) error) error {
	dec, err := zstd.NewReader(rd)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	var line int
	for sc.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("trace: line %d: %w", line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return sc.Err()
}
