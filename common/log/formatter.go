package log

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

type customFormatter struct{}

var levelNames = []string{"P", "F", "E", "W", "I", "D", "T"}

// Format writes the entry as
// L|time|node|module|file:line message key=value...
func (customFormatter) Format(e *logrus.Entry) ([]byte, error) {
	buf := e.Buffer
	if buf == nil {
		buf = new(bytes.Buffer)
	}
	fmt.Fprint(buf, levelNames[e.Level], "|")
	fmt.Fprint(buf, e.Time.Format(LogTimeLayout), "|")
	if v, ok := e.Data[FieldKeyNode]; ok {
		buf.WriteString(fmt.Sprint(v, "------")[0:6])
		buf.WriteString("|")
	} else {
		buf.WriteString("------|")
	}
	if v, ok := e.Data[FieldKeyModule]; ok {
		fmt.Fprint(buf, v, "|")
	} else if e.HasCaller() {
		fmt.Fprint(buf, getPackageName(e.Caller.Function), "|")
	} else {
		buf.WriteString("--|")
	}
	if e.HasCaller() {
		fmt.Fprint(buf, path.Base(e.Caller.File), ":", e.Caller.Line, " ")
	}
	buf.WriteString(strings.TrimRight(e.Message, "\n"))

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if _, ok := systemFields[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, " %s=%v", k, e.Data[k])
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
