package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	lv, err := ParseLevel("debug")
	assert.NoError(t, err)
	assert.Equal(t, DebugLevel, lv)
	assert.Equal(t, "debug", lv.String())

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLogger_ModuleLevel(t *testing.T) {
	out := new(bytes.Buffer)
	logger := NewWithOutput(out)
	logger.SetConsoleLevel(InfoLevel)

	vote := ModuleLogger(logger, "vote")
	signer := ModuleLogger(logger, "signer")
	logger.SetModuleLevel("vote", DebugLevel)

	vote.Debugf("accepted nonce=%d", 1)
	signer.Debugf("hidden")
	signer.Info("added")

	s := out.String()
	assert.Contains(t, s, "|vote|")
	assert.Contains(t, s, "accepted nonce=1")
	assert.NotContains(t, s, "hidden")
	assert.Contains(t, s, "|signer|")
	assert.Contains(t, s, "added")
}

func TestLogger_FileWriterGetsFilteredEntries(t *testing.T) {
	out := new(bytes.Buffer)
	file := new(bytes.Buffer)
	logger := NewWithOutput(out)
	logger.SetConsoleLevel(WarnLevel)
	logger.SetFileWriter(file)

	logger.WithFields(Fields{"signer": "0x01"}).Info("only in file")

	assert.Empty(t, out.String())
	assert.Contains(t, file.String(), "only in file signer=0x01")
}

func TestCustomFormatter_Fields(t *testing.T) {
	e := logrus.NewEntry(logrus.New())
	e.Level = logrus.WarnLevel
	e.Message = "rejected\n"
	e.Data = logrus.Fields{
		FieldKeyModule: "vote",
		FieldKeyNode:   "0x1234567890",
		"reason":       "Unauthorized",
		"nonce":        3,
	}
	bs, err := customFormatter{}.Format(e)
	assert.NoError(t, err)
	s := string(bs)
	assert.Contains(t, s, "W|")
	assert.Contains(t, s, "|0x1234|vote|")
	assert.Contains(t, s, "rejected nonce=3 reason=Unauthorized\n")
}

func TestForwarderConfig(t *testing.T) {
	c := &ForwarderConfig{Address: "localhost:5000", Level: "warn"}
	network, hostPort, err := c.NetworkAndHostPort("tcp")
	assert.NoError(t, err)
	assert.Equal(t, "tcp", network)
	assert.Equal(t, "localhost:5000", hostPort)

	host, port := splitHostPort(hostPort)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 5000, port)

	lvs, err := c.HookLevels()
	assert.NoError(t, err)
	assert.Equal(t, []logrus.Level{
		logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel,
	}, lvs)

	c = &ForwarderConfig{Address: "unix:///tmp/sock"}
	_, _, err = c.NetworkAndHostPort("tcp")
	assert.Error(t, err)

	c = &ForwarderConfig{Vendor: "syslog", Address: "localhost:5000"}
	assert.Error(t, AddForwarder(New(), c))

	c = &ForwarderConfig{
		Options: map[string]interface{}{"max_retry": 3},
	}
	var opt struct {
		MaxRetry int `json:"max_retry"`
	}
	assert.NoError(t, c.UnmarshalByOptions(&opt))
	assert.Equal(t, 3, opt.MaxRetry)
}
