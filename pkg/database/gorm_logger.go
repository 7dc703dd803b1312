package database

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/citypress/newsroom/pkg/log"
)

// gormLogger routes gorm output through the service logger so statements
// carry the request and trace ids of the calling request.
type gormLogger struct {
	level logger.LogLevel
	slow  time.Duration
}

// newGormLogger logs failed and slow statements always, every statement when
// verbose is set.
func newGormLogger(verbose bool, slow time.Duration) logger.Interface {
	l := &gormLogger{level: logger.Warn, slow: slow}
	if verbose {
		l.level = logger.Info
	}
	return l
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) sugar(ctx context.Context) *zap.SugaredLogger {
	return log.WithContext(ctx).Desugar().WithOptions(zap.AddCallerSkip(2)).Sugar()
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.sugar(ctx).Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.sugar(ctx).Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.sugar(ctx).Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		l.sugar(ctx).Errorw("sql failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.slow > 0 && elapsed > l.slow && l.level >= logger.Warn:
		sql, rows := fc()
		l.sugar(ctx).Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed, "threshold", l.slow)
	case l.level >= logger.Info:
		sql, rows := fc()
		l.sugar(ctx).Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
