/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"io"
	"testing"

	"github.com/hyperledger/fabric-lib-go/common/flogging"
	"github.com/hyperledger/fabric-lib-go/common/flogging/floggingtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides logging API
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	IsEnabledFor(level zapcore.Level) bool
	Named(name string) Logger
	With(args ...interface{}) Logger
	Zap() *zap.Logger
}

type Config struct {
	// Format is the log record format specifier. If the spec is the string
	// "json", log records will be formatted as JSON. Any other string will be
	// provided to the flogging format encoder.
	//
	// If Format is not provided, a default format that provides basic
	// information will be used.
	Format string
	// LogSpec determines the log levels that are enabled, e.g.
	// "info" or "fablogen.topology=debug:warn".
	//
	// If LogSpec is not provided, loggers will be enabled at the INFO level.
	LogSpec string
	// Writer is the sink for encoded and formatted log records.
	//
	// If a Writer is not provided, os.Stderr will be used as the log sink.
	Writer io.Writer
}

func Init(c Config) {
	flogging.Init(flogging.Config{
		Format:  c.Format,
		LogSpec: c.LogSpec,
		Writer:  c.Writer,
	})
}

type Recorder = floggingtest.Recorder

type Option = floggingtest.Option

func Named(loggerName string) Option {
	return func(r *floggingtest.RecordingCore, l *zap.Logger) *zap.Logger {
		return l.Named(loggerName)
	}
}

func MustGetLogger(loggerName string) Logger {
	return &logger{FabricLogger: flogging.MustGetLogger(loggerName)}
}

// NewTestLogger returns a Logger recording every entry at debug level and above.
func NewTestLogger(tb testing.TB, options ...Option) (Logger, *Recorder) {
	l, r := floggingtest.NewTestLogger(tb, options...)
	return &logger{FabricLogger: l}, r
}

type logger struct {
	*flogging.FabricLogger
}

func (l *logger) Named(name string) Logger {
	return &logger{FabricLogger: l.FabricLogger.Named(name)}
}

func (l *logger) With(args ...interface{}) Logger {
	return &logger{FabricLogger: l.FabricLogger.With(args...)}
}
