package log

/**
 * @file: log_rewrite.go
 * @description: package level helpers over the global sugared logger
 */

func Info(args ...interface{}) {
	current().Info(args...)
}

func Infof(format string, args ...interface{}) {
	current().Infof(format, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	current().Infow(msg, keysAndValues...)
}

func Debug(args ...interface{}) {
	current().Debug(args...)
}

func Debugf(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	current().Debugw(msg, keysAndValues...)
}

func Warn(args ...interface{}) {
	current().Warn(args...)
}

func Warnf(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	current().Warnw(msg, keysAndValues...)
}

func Error(args ...interface{}) {
	current().Error(args...)
}

func Errorf(format string, args ...interface{}) {
	current().Errorf(format, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	current().Errorw(msg, keysAndValues...)
}

func Fatal(args ...interface{}) {
	current().Fatal(args...)
}

func Fatalf(format string, args ...interface{}) {
	current().Fatalf(format, args...)
}
