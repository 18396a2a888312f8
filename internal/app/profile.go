package app

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// profiler appends per-frame section timings to a CSV file so slow frames
// can be traced to the analysis, animation or render stage. A nil profiler
// is valid and does nothing, so call sites never check.
type profiler struct {
	mu    sync.Mutex
	file  *os.File
	out   *bufio.Writer
	frame int64
	start time.Time
	last  time.Time
}

func newProfiler(path string, logger *log.Logger) *profiler {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		if logger != nil {
			logger.Printf("profiler disabled: %v", err)
		}
		return nil
	}
	p := &profiler{
		file: f,
		out:  bufio.NewWriter(f),
	}
	fmt.Fprintln(p.out, "frame,timestamp,section,ms")
	return p
}

func (p *profiler) beginFrame() {
	if p == nil {
		return
	}
	now := time.Now()
	p.mu.Lock()
	p.frame++
	p.start = now
	p.last = now
	p.mu.Unlock()
}

// markSection records the time spent since the previous mark.
func (p *profiler) markSection(name string) {
	if p == nil {
		return
	}
	now := time.Now()
	p.mu.Lock()
	p.write(name, now.Sub(p.last).Seconds()*1000)
	p.last = now
	p.mu.Unlock()
}

func (p *profiler) endFrame() {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.write("total", time.Since(p.start).Seconds()*1000)
	p.mu.Unlock()
}

func (p *profiler) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.out.Flush(); err != nil {
		p.file.Close()
		return err
	}
	return p.file.Close()
}

// write assumes p.mu is held.
func (p *profiler) write(section string, ms float64) {
	fmt.Fprintf(p.out, "%d,%s,%s,%.3f\n",
		p.frame, time.Now().Format(time.RFC3339Nano), section, ms)
}
