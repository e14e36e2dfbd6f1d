package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

var debugEnabled bool

// Debugf logs through the standard logger only when the configured level is
// DEBUG. Everything else goes straight through log.Printf.
func Debugf(format string, v ...any) {
	if !debugEnabled {
		return
	}
	log.Printf("DEBUG "+format, v...)
}

// Rotator is an io.Writer that rotates the underlying file once it grows
// past MaxSize bytes, keeping up to MaxBackups older files.
type Rotator struct {
	Filename   string
	MaxSize    int64
	MaxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

// Setup points the standard logger at stderr plus a rotating file and sets
// the level gate for Debugf. On file errors it falls back to stderr only.
func Setup(filename, level string, maxSizeMB int64, maxBackups int) {
	debugEnabled = strings.EqualFold(level, "DEBUG")

	r := &Rotator{
		Filename:   filename,
		MaxSize:    maxSizeMB * 1024 * 1024,
		MaxBackups: maxBackups,
	}

	if err := r.open(); err != nil {
		log.Printf("Failed to open log file %s, logging to stderr only: %v", filename, err)
		return
	}

	log.SetOutput(io.MultiWriter(os.Stderr, r))
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

func (r *Rotator) open() error {
	info, err := os.Stat(r.Filename)
	if os.IsNotExist(err) {
		f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		r.file = f
		r.size = 0
		return nil
	}
	if err != nil {
		return err
	}

	f, err := os.OpenFile(r.Filename, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}

	if r.size+int64(len(p)) > r.MaxSize {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Log rotation failed: %v\n", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts financegpt.log.1 -> .2 and so on, then truncates the live file.
func (r *Rotator) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	for i := r.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.Filename, i)
		if _, err := os.Stat(oldPath); os.IsNotExist(err) {
			continue
		}
		os.Rename(oldPath, fmt.Sprintf("%s.%d", r.Filename, i+1))
	}

	if _, err := os.Stat(r.Filename); err == nil {
		os.Rename(r.Filename, r.Filename+".1")
	}

	return r.open()
}
