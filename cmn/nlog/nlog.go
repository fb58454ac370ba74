// Package nlog is this node's logger: buffered, timestamped, size-rotated,
// with separate INFO and ERROR streams.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/mono"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var sevChar = [...]byte{'I', 'W', 'E'}

// MaxSize is the size (bytes) at which a log stream rotates to a new file.
var MaxSize int64 = 64 * 1024 * 1024

var (
	toStderr     bool
	alsoToStderr bool
	logDir       string
	title        string
	pid          = os.Getpid()
)

type stream struct {
	mu      sync.Mutex
	buf     strings.Builder
	file    *os.File
	written int64
	last    atomic.Int64
	oob     atomic.Bool
	sev     severity
}

var streams = map[severity]*stream{
	sevInfo: {sev: sevInfo},
	sevWarn: {sev: sevWarn},
	sevErr:  {sev: sevErr},
}

// InitFlags registers the two logging flags the teacher's nodes expose.
func InitFlags(flset *flag.FlagSet) {
	flset.BoolVar(&toStderr, "logtostderr", false, "log to standard error instead of files")
	flset.BoolVar(&alsoToStderr, "alsologtostderr", false, "log to standard error as well as files")
}

func SetLogDirRole(dir, _ string) { logDir = dir }
func SetTitle(s string)           { title = s }

func Infof(format string, args ...any)    { write(sevInfo, format, args...) }
func Infoln(args ...any)                  { write(sevInfo, "", args...) }
func Warningf(format string, args ...any) { write(sevWarn, format, args...) }
func Warningln(args ...any)               { write(sevWarn, "", args...) }
func Errorf(format string, args ...any)   { write(sevErr, format, args...) }
func Errorln(args ...any)                 { write(sevErr, "", args...) }

// ErrorDepth matches the teacher's call shape used by cos.ExitLog(f); depth
// is accepted for source-line compatibility but this implementation always
// reports its immediate caller.
func ErrorDepth(_ int, args ...any) { write(sevErr, "", args...) }

func write(sev severity, format string, args ...any) {
	line := format1(sev, format, args...)
	if toStderr {
		os.Stderr.WriteString(line)
		return
	}
	if alsoToStderr || sev >= sevWarn {
		os.Stderr.WriteString(line)
	}
	s := streams[sev]
	if sev == sevWarn {
		s = streams[sevInfo]
	}
	s.mu.Lock()
	s.buf.WriteString(line)
	s.oob.Store(true)
	s.last.Store(mono.NanoTime())
	s.mu.Unlock()
	if sev >= sevWarn && sev != sevErr {
		s2 := streams[sevErr]
		s2.mu.Lock()
		s2.buf.WriteString(line)
		s2.oob.Store(true)
		s2.mu.Unlock()
	}
}

func format1(sev severity, format string, args ...any) string {
	_, fn, ln, ok := runtime.Caller(3)
	if !ok {
		fn, ln = "???", 0
	} else if idx := strings.LastIndexByte(fn, filepath.Separator); idx >= 0 {
		fn = fn[idx+1:]
	}
	var body string
	if format == "" {
		body = fmt.Sprintln(args...)
	} else {
		body = fmt.Sprintf(format, args...)
		if !strings.HasSuffix(body, "\n") {
			body += "\n"
		}
	}
	return fmt.Sprintf("%c %s %s:%d %s", sevChar[sev], time.Now().Format("15:04:05.000000"), fn, ln, body)
}

// Flush writes buffered lines to disk; exit[0]==true also closes and syncs
// the underlying files (used on process shutdown).
func Flush(exit ...bool) {
	ex := len(exit) > 0 && exit[0]
	for _, sev := range []severity{sevInfo, sevErr} {
		s := streams[sev]
		s.mu.Lock()
		if s.buf.Len() == 0 && !ex {
			s.mu.Unlock()
			continue
		}
		if logDir != "" {
			if s.file == nil {
				if err := s.rotate(); err != nil {
					s.mu.Unlock()
					continue
				}
			}
			n, _ := s.file.WriteString(s.buf.String())
			s.written += int64(n)
			if s.written >= MaxSize {
				s.file.Close()
				s.file = nil
				s.written = 0
			}
		}
		s.buf.Reset()
		s.oob.Store(false)
		if ex && s.file != nil {
			s.file.Sync()
			s.file.Close()
		}
		s.mu.Unlock()
	}
}

// under s.mu
func (s *stream) rotate() error {
	name := fmt.Sprintf("mininode.%s.%s.%d.log", hostname(), sevName(s.sev), pid)
	f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	s.file = f
	s.written = 0
	if title != "" {
		f.WriteString(title + "\n")
	}
	return nil
}

func sevName(sev severity) string {
	switch sev {
	case sevWarn:
		return "WARNING"
	case sevErr:
		return "ERROR"
	default:
		return "INFO"
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// InfoLogName and ErrLogName name the current on-disk log files.
func InfoLogName() string { return fmt.Sprintf("mininode.%s.INFO.%d.log", hostname(), pid) }
func ErrLogName() string  { return fmt.Sprintf("mininode.%s.ERROR.%d.log", hostname(), pid) }

// Since reports how long it has been since the last write to any stream.
func Since() time.Duration {
	now := mono.NanoTime()
	var max int64
	for _, s := range streams {
		if d := now - s.last.Load(); d > max {
			max = d
		}
	}
	return time.Duration(max)
}

// OOB reports whether either stream has unflushed content.
func OOB() bool {
	for _, s := range streams {
		if s.oob.Load() {
			return true
		}
	}
	return false
}
