package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/icon-project/govote/common/errors"
)

const LogTimeLayout = "15:04:05.000000"

type Level int

const (
	PanicLevel = Level(logrus.PanicLevel)
	FatalLevel = Level(logrus.FatalLevel)
	ErrorLevel = Level(logrus.ErrorLevel)
	WarnLevel  = Level(logrus.WarnLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	DebugLevel = Level(logrus.DebugLevel)
	TraceLevel = Level(logrus.TraceLevel)
)

var levelStrings = [...]string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}

func (l Level) String() string {
	if l < PanicLevel || int(l) >= len(levelStrings) {
		return "unknown"
	}
	return levelStrings[l]
}

func ParseLevel(s string) (Level, error) {
	lv, err := logrus.ParseLevel(s)
	if err != nil {
		return InfoLevel, errors.IllegalArgumentError.Wrapf(err, "InvalidLogLevel(level=%s)", s)
	}
	return Level(lv), nil
}

const (
	FieldKeyNode   = "node"
	FieldKeyModule = "module"
)

// systemFields are printed in the header of the line, not as key=value.
var systemFields = map[string]struct{}{
	FieldKeyNode:   {},
	FieldKeyModule: {},
}

type Fields logrus.Fields

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Panic(args ...interface{})
	Panicf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithFields(Fields) Logger
	SetLevel(lv Level)
	GetLevel() Level

	// SetConsoleLevel and SetModuleLevel filter what reaches the output.
	// Entries below the logger level are never formatted.
	SetConsoleLevel(lv Level)
	SetModuleLevel(mod string, lv Level)

	// SetFileWriter receives every formatted entry regardless of the
	// console and module levels.
	SetFileWriter(w io.Writer)
	AddHook(h logrus.Hook)
	Writer() *io.PipeWriter
}

// entryLogger serves both the root logger and the derived ones. All of them
// share the logrus.Logger and its filter.
type entryLogger struct {
	*logrus.Entry
}

func (l *entryLogger) filter() *logFilter {
	return l.Logger.Formatter.(*logFilter)
}

func (l *entryLogger) WithFields(fields Fields) Logger {
	return &entryLogger{l.Entry.WithFields(logrus.Fields(fields))}
}

func (l *entryLogger) SetLevel(lv Level) {
	l.Logger.SetLevel(logrus.Level(lv))
}

func (l *entryLogger) GetLevel() Level {
	return Level(l.Logger.GetLevel())
}

func (l *entryLogger) SetConsoleLevel(lv Level) {
	l.filter().SetDefaultLevel(lv)
}

func (l *entryLogger) SetModuleLevel(mod string, lv Level) {
	l.filter().SetModuleLevel(mod, lv)
}

func (l *entryLogger) SetFileWriter(w io.Writer) {
	l.filter().SetFileWriter(w)
}

func (l *entryLogger) AddHook(h logrus.Hook) {
	l.Logger.AddHook(h)
}

// getPackageName extracts "pkg" from "github.com/x/y/pkg.(*T).Method".
func getPackageName(f string) string {
	if idx := strings.LastIndexByte(f, '/'); idx >= 0 {
		f = f[idx+1:]
	}
	if idx := strings.IndexByte(f, '.'); idx > 0 {
		f = f[:idx]
	}
	return f
}

var Trace, Print, Debug, Info, Warn, Error, Panic, Fatal func(args ...interface{})
var Tracef, Printf, Debugf, Infof, Warnf, Errorf, Panicf, Fatalf func(format string, args ...interface{})

var globalLogger Logger

func SetGlobalLogger(l Logger) {
	globalLogger = l
	Trace, Tracef = l.Trace, l.Tracef
	Print, Printf = l.Print, l.Printf
	Debug, Debugf = l.Debug, l.Debugf
	Info, Infof = l.Info, l.Infof
	Warn, Warnf = l.Warn, l.Warnf
	Error, Errorf = l.Error, l.Errorf
	Panic, Panicf = l.Panic, l.Panicf
	Fatal, Fatalf = l.Fatal, l.Fatalf
}

func GlobalLogger() Logger {
	return globalLogger
}

func WithFields(fields Fields) Logger {
	return globalLogger.WithFields(fields)
}

// ModuleLogger returns the logger tagged with the module name. The global
// logger is used if logger is nil.
func ModuleLogger(logger Logger, module string) Logger {
	if logger == nil {
		logger = globalLogger
	}
	return logger.WithFields(Fields{FieldKeyModule: module})
}

func New() Logger {
	return NewWithOutput(os.Stderr)
}

func NewWithOutput(out io.Writer) Logger {
	l := logrus.New()
	l.Out = out
	l.Level = logrus.DebugLevel
	l.SetReportCaller(true)
	l.SetFormatter(newLogFilter(customFormatter{}))
	return &entryLogger{logrus.NewEntry(l)}
}

func init() {
	SetGlobalLogger(New())
}
