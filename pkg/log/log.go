// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	base  = zap.NewNop()
	sugar = base.Sugar()
	lvl   = zap.NewAtomicLevel()
)

// ProviderSet is the Wire provider set for the log package.
var ProviderSet = wire.NewSet(ProvideLogger)

type Logger struct {
	Log *zap.SugaredLogger
}

// ProvideLogger installs the global logger described by conf and returns a
// handle to it.
func ProvideLogger(conf *Conf) (*Logger, error) {
	z, err := NewLog(conf)
	if err != nil {
		return nil, err
	}
	return &Logger{Log: z.Sugar()}, nil
}

// Init installs the global logger.
func Init(conf *Conf) error {
	_, err := NewLog(conf)
	return err
}

// NewLog builds a logger writing to the sinks named by conf.Output, makes it
// the global one and returns it.
func NewLog(conf *Conf) (*zap.Logger, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}

	enc := newEncoder(conf.Format)
	var cores []zapcore.Core
	if conf.writesStdout() {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl))
	}
	if conf.writesFile() {
		cores = append(cores, zapcore.NewCore(enc.Clone(), fileSink(conf), lvl))
	}
	lvl.SetLevel(parseLogLevel(conf.Level))

	opts := []zap.Option{zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)}
	if conf.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", conf.Service)))
	}
	z := zap.New(zapcore.NewTee(cores...), opts...)

	mu.Lock()
	base, sugar = z, z.Sugar()
	mu.Unlock()

	z.Sugar().Debugw("logger ready", "output", conf.Output, "format", conf.Format, "level", conf.Level)
	return z, nil
}

// SetLevel changes the level of the running logger. Unknown names mean info.
func SetLevel(l string) {
	lvl.SetLevel(parseLogLevel(l))
}

// Level returns the current level name.
func Level() string {
	return lvl.Level().String()
}

// GetLogger returns the global sugared logger.
func GetLogger() *zap.SugaredLogger {
	return current()
}

// Sync flushes buffered entries. Terminals and pipes cannot be fsynced, that
// error is dropped.
func Sync() error {
	mu.RLock()
	z := base
	mu.RUnlock()
	err := z.Sync()
	if err != nil && (strings.Contains(err.Error(), "/dev/stdout") || strings.Contains(err.Error(), "invalid argument")) {
		return nil
	}
	return err
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder

	if strings.EqualFold(format, FormatJSON) {
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.DateTime)
	return zapcore.NewConsoleEncoder(cfg)
}

// parseLogLevel accepts zap level names in any case plus WARNING.
func parseLogLevel(name string) zapcore.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(name)
	if err != nil || name == "" {
		return zapcore.InfoLevel
	}
	return l
}
