package utils

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOutputOptions selects where the process log goes
type LogOutputOptions struct {
	Output     string // stdout, file, both
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// SetupLogOutput routes the standard logger to stdout and/or a rotating file.
// The returned writer is what the access logger should share; close it on shutdown.
func SetupLogOutput(opts LogOutputOptions) io.WriteCloser {
	var w io.WriteCloser = nopCloser{os.Stdout}

	if opts.Output == "file" || opts.Output == "both" {
		rotating := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		}
		if opts.Output == "both" {
			w = multiCloser{Writer: io.MultiWriter(os.Stdout, rotating), closer: rotating}
		} else {
			w = rotating
		}
	}

	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lmicroseconds)
	return w
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

type multiCloser struct {
	io.Writer
	closer io.Closer
}

func (m multiCloser) Close() error { return m.closer.Close() }
