// Package logger wraps logrus with namespaced, key/value structured logging.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
)

// Formatter is the interface log formatters implement.
type Formatter = logrus.Formatter

// Logger provides a structured logging interface.
type Logger struct {
	base   *logrus.Logger
	fields logrus.Fields
}

// NewLogger returns a new Logger instance configured with the given Config.
func NewLogger(ns string, conf Config) *Logger {
	l := New(ns)
	l.Configure(conf)
	return l
}

// New returns a new Logger instance with the default configuration.
// After the namespace, arguments are key-value pairs attached to every message.
func New(ns string, args ...interface{}) *Logger {
	base := logrus.New()
	base.SetLevel(logrus.InfoLevel)
	f := fields(args...)
	f["ns"] = ns
	l := &Logger{base: base, fields: f}
	l.SetFormatter(&textFormatter{
		DefaultConfig().TextFormat,
		jsonFormatter{},
	})
	return l
}

// NewSubLogger returns a new Logger instance which shares the parent's
// output, level, and formatter, but has its own namespace.
func (l *Logger) NewSubLogger(ns string, args ...interface{}) *Logger {
	f := copyFields(l.fields)
	for k, v := range fields(args...) {
		f[k] = v
	}
	f["ns"] = ns
	return &Logger{base: l.base, fields: f}
}

// WithFields returns a new Logger instance with the given fields added to all log messages.
func (l *Logger) WithFields(args ...interface{}) *Logger {
	f := copyFields(l.fields)
	for k, v := range fields(args...) {
		f[k] = v
	}
	return &Logger{base: l.base, fields: f}
}

// Debug logs a debug message.
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Debug("Some message here", "key1", value1, "key2", value2)
func (l *Logger) Debug(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Debug(msg)
}

// Info logs an info message
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Info("Some message here", "key1", value1, "key2", value2)
func (l *Logger) Info(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Warn(msg)
}

// Error logs an error message
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Error("Some message here", "key1", value1, "key2", value2)
//
// Error has a two-argument version that can be used as a shortcut.
//
//	err := startServer()
//	log.Error("Couldn't start server", err)
func (l *Logger) Error(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Error(msg)
}

// SetLevel sets the level of logging.
func (l *Logger) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.base.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		l.base.SetLevel(logrus.WarnLevel)
	case "error":
		l.base.SetLevel(logrus.ErrorLevel)
	default:
		l.base.SetLevel(logrus.InfoLevel)
	}
}

// SetFormatter sets the formatter of the logger.
func (l *Logger) SetFormatter(f Formatter) {
	l.base.Formatter = f
}

// SetOutput sets the output of the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.base.Out = w
}

// Discard configures the logger to discard all logs.
func (l *Logger) Discard() {
	l.SetOutput(io.Discard)
}

func (l *Logger) entry(args ...interface{}) *logrus.Entry {
	f := copyFields(l.fields)
	for k, v := range fields(args...) {
		f[k] = v
	}
	return l.base.WithFields(f)
}

// recoverLogErr is used to recover from any panics during logging.
// Logging should never crash the program.
func recoverLogErr() {
	if r := recover(); r != nil {
		fmt.Println("Recovered from logging panic", r)
	}
}

// PrintSimpleError prints out an error message with a red "ERROR:" prefix.
func PrintSimpleError(err error) {
	fmt.Fprintf(os.Stderr, "%s %s\n", aurora.Red("ERROR:"), err.Error())
}

func copyFields(in logrus.Fields) logrus.Fields {
	out := make(logrus.Fields, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func fields(args ...interface{}) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	if len(args) == 1 {
		if err, ok := args[0].(error); ok {
			f["error"] = err
		} else {
			f["unknown"] = args[0]
		}
		return f
	}
	if len(args)%2 != 0 {
		f["unknown"] = args[len(args)-1]
		args = args[:len(args)-1]
	}
	for i := 0; i < len(args); i += 2 {
		k := fmt.Sprintf("%v", args[i])
		f[k] = args[i+1]
	}
	return f
}
