// Package jsonl appends snapshots to a JSON Lines stream, one snapshot
// per line.
package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/ewangz/agentconv/pkg/snapshot"
)

var ErrClosed = errors.New("jsonl recorder closed")

func NewRecorder(out io.WriteCloser) snapshot.Recorder {
	return &Recorder{
		bw:  bufio.NewWriterSize(out, 64*1024),
		out: out,
	}
}

type Recorder struct {
	mu     sync.Mutex
	bw     *bufio.Writer
	out    io.WriteCloser
	closed bool
}

func (r *Recorder) Record(snap *snapshot.Snapshot) error {
	line, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if _, err := r.bw.Write(line); err != nil {
		return err
	}
	if err := r.bw.WriteByte('\n'); err != nil {
		return err
	}
	return r.bw.Flush()
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.bw.Flush(); err != nil {
		return err
	}
	return r.out.Close()
}
