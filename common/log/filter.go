package log

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type logFilter struct {
	lock         sync.RWMutex
	formatter    logrus.Formatter
	defaultLevel Level
	moduleLevels map[string]Level

	fileWriter io.Writer
}

func newLogFilter(formatter logrus.Formatter) *logFilter {
	return &logFilter{
		formatter:    formatter,
		defaultLevel: TraceLevel,
		moduleLevels: make(map[string]Level, 6),
	}
}

func (f *logFilter) Format(e *logrus.Entry) ([]byte, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	level := f.defaultLevel

	var module string
	if value, ok := e.Data[FieldKeyModule]; !ok {
		if e.HasCaller() {
			module = getPackageName(e.Caller.Function)
		}
	} else {
		module, _ = value.(string)
	}

	if len(module) > 0 {
		if lv, ok := f.moduleLevels[module]; ok {
			level = lv
		}
	}

	if e.Level > logrus.Level(level) && f.fileWriter == nil {
		return nil, nil
	}
	buf, err := f.formatter.Format(e)
	if f.fileWriter != nil && len(buf) > 0 {
		_, _ = f.fileWriter.Write(buf)
	}
	if e.Level > logrus.Level(level) {
		return nil, nil
	}
	return buf, err
}

func (f *logFilter) SetModuleLevel(module string, level Level) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.moduleLevels[module] = level
}

func (f *logFilter) GetModuleLevel(module string) Level {
	f.lock.RLock()
	defer f.lock.RUnlock()
	if lv, ok := f.moduleLevels[module]; ok {
		return lv
	}
	return f.defaultLevel
}

func (f *logFilter) SetDefaultLevel(level Level) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.defaultLevel = level
}

func (f *logFilter) GetDefaultLevel() Level {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.defaultLevel
}

// SetFileWriter set file writer. Every entry passing the logger level is
// written to it regardless of the console level.
func (f *logFilter) SetFileWriter(writer io.Writer) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.fileWriter = writer
}
