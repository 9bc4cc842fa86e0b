// Package logging builds the zap logger of klimozawr.
package logging

import (
	"errors"
	"io"
	"os"

	"github.com/klimozawr/klimozawr/internal/kzerr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// FileMaxSizeMB is the size to rotate the log file at.
	FileMaxSizeMB = 2

	// FileMaxBackups is the number of rotated log files to keep.
	FileMaxBackups = 5
)

var (
	ErrInvalidLevel = errors.New("invalid log level")
)

// Options is the configuration of the logger.
type Options struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string

	// File is the path to the log file. Empty means no file.
	File string

	// Console is the destination of the human readable log. Nil means os.Stderr.
	Console io.Writer
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New builds a logger.
//
// The console output uses the console encoder if it is a terminal, otherwise JSON.
// The file output is always JSON, and rotated every FileMaxSizeMB.
// The returned function flushes and closes the outputs.
func New(o Options) (*zap.Logger, func() error, error) {
	level := zapcore.InfoLevel
	if o.Level != "" {
		l, err := zapcore.ParseLevel(o.Level)
		if err != nil {
			return nil, nil, kzerr.New(ErrInvalidLevel, nil, "invalid log level: %q", o.Level)
		}
		level = l
	}

	console := o.Console
	if console == nil {
		console = os.Stderr
	}

	var consoleEncoder zapcore.Encoder
	if isTerminal(console) {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		consoleEncoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(console)), level),
	}

	var file *lumberjack.Logger
	if o.File != "" {
		file = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    FileMaxSizeMB,
			MaxBackups: FileMaxBackups,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(file),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	closeFn := func() error {
		logger.Sync()
		if file != nil {
			return file.Close()
		}
		return nil
	}

	return logger, closeFn, nil
}
