package log

import (
	"fmt"
	"sync/atomic"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelLog
	LevelWarn
	LevelError
)

var logLevel = func() *atomic.Int32 {
	var l atomic.Int32
	l.Store(int32(LevelLog))
	return &l
}()

func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelLog, LevelWarn, LevelError:
		return true
	default:
		return false
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "log"
	}
}

// ParseLevel accepts the console method names plus "info" as an alias for "log".
// Unknown names return an invalid Level.
func ParseLevel(level string) Level {
	switch level {
	case LevelDebug.String():
		return LevelDebug
	case LevelLog.String(), "info":
		return LevelLog
	case LevelWarn.String(), "warning":
		return LevelWarn
	case LevelError.String():
		return LevelError
	default:
		return -1
	}
}

func CurrentLevel() Level {
	return Level(logLevel.Load())
}

// SetLevel ignores invalid levels.
func SetLevel(level Level) {
	if !level.Valid() {
		return
	}
	logLevel.Store(int32(level))
	levelChanged(level)
}

func enabled(kind Level) bool {
	return kind >= CurrentLevel()
}

func Debugf(format string, args ...interface{}) int {
	return logf(LevelDebug, 1, format, args...)
}

func Printf(format string, args ...interface{}) int {
	return logf(LevelLog, 1, format, args...)
}

func Warnf(format string, args ...interface{}) int {
	return logf(LevelWarn, 1, format, args...)
}

func Errorf(format string, args ...interface{}) int {
	return logf(LevelError, 1, format, args...)
}

func logf(kind Level, skip int, format string, args ...interface{}) int {
	if !enabled(kind) {
		return 0
	}
	s := fmt.Sprintf(format, args...)
	if caller := getCaller(skip + 1); caller != "" {
		s = caller + " - " + s
	}
	writeLog(kind, s)
	return len(s)
}

func Debug(args ...interface{}) int {
	return log(LevelDebug, 1, args...)
}

func Print(args ...interface{}) int {
	return log(LevelLog, 1, args...)
}

func Warn(args ...interface{}) int {
	return log(LevelWarn, 1, args...)
}

func Error(args ...interface{}) int {
	return log(LevelError, 1, args...)
}

func log(kind Level, skip int, args ...interface{}) int {
	if !enabled(kind) {
		return 0
	}
	s := fmt.Sprint(args...)
	if caller := getCaller(skip + 1); caller != "" {
		s = caller + " - " + s
	}
	writeLog(kind, s)
	return len(s)
}
