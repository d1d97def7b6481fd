package log

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/evalphobia/logrus_fluent"
	"github.com/sirupsen/logrus"

	"github.com/icon-project/govote/common/errors"
)

const (
	HookVendorFluentd  = "fluentd"
	HookVendorLogstash = "logstash"
)

type ForwarderConfig struct {
	Vendor     string                 `json:"vendor"`
	Address    string                 `json:"address"`
	Level      string                 `json:"level"`
	Name       string                 `json:"name"`
	TimeFormat string                 `json:"time_format,omitempty"`
	Options    map[string]interface{} `json:"options,omitempty"`
}

// UnmarshalByOptions decodes vendor specific options into v.
func (c *ForwarderConfig) UnmarshalByOptions(v interface{}) error {
	if len(c.Options) == 0 {
		return nil
	}
	b, err := json.Marshal(c.Options)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// NetworkAndHostPort splits the address like "tcp://host:port". The
// network defaults to defaultNet. Unix sockets are not supported.
func (c *ForwarderConfig) NetworkAndHostPort(defaultNet string) (string, string, error) {
	addr := c.Address
	if !strings.Contains(addr, "://") {
		addr = defaultNet + "://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", "", errors.IllegalArgumentError.Wrapf(err, "InvalidForwarderAddress(%s)", c.Address)
	}
	if u.Host == "" {
		return "", "", errors.IllegalArgumentError.Errorf("NoHostPort(%s)", c.Address)
	}
	if u.Scheme == "unix" {
		return "", "", errors.IllegalArgumentError.Errorf("InvalidNetwork(%s)", u.Scheme)
	}
	return u.Scheme, u.Host, nil
}

func splitHostPort(hostPort string) (string, int) {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return hostPort, 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// HookLevels returns configured level and all levels more severe than it.
func (c *ForwarderConfig) HookLevels() ([]logrus.Level, error) {
	lv, err := ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	lvs := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= logrus.Level(lv) {
			lvs = append(lvs, l)
		}
	}
	return lvs, nil
}

// HookWrapper decorates entries with the fields log collectors index on
// before handing them to the vendor hook.
type HookWrapper struct {
	h   logrus.Hook
	lvs []logrus.Level
}

func (h *HookWrapper) Levels() []logrus.Level {
	return h.lvs
}

func (h *HookWrapper) Fire(e *logrus.Entry) error {
	d := e.Data
	defer func() {
		e.Data = d
	}()
	e.Data = make(map[string]interface{}, len(d)+3)
	for k, v := range d {
		e.Data[k] = v
	}
	e.Data["logtime"] = e.Time.UnixNano()
	if e.Caller != nil {
		if _, ok := e.Data[FieldKeyModule]; !ok {
			e.Data[FieldKeyModule] = getPackageName(e.Caller.Function)
		}
		e.Data["src"] = fmt.Sprintf("%s:%d", path.Base(e.Caller.File), e.Caller.Line)
	}
	return h.h.Fire(e)
}

// AddForwarder installs a hook shipping entries to the log collector
// described by the configuration.
func AddForwarder(logger Logger, c *ForwarderConfig) error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Name == "" {
		c.Name = "govote"
	}
	if c.TimeFormat == "" {
		c.TimeFormat = time.RFC3339Nano
	}
	lvs, err := c.HookLevels()
	if err != nil {
		return err
	}

	var h logrus.Hook
	switch c.Vendor {
	case HookVendorFluentd:
		h, err = newFluentHook(c, lvs)
	case HookVendorLogstash:
		h, err = newLogstashHook(c)
	default:
		return errors.UnsupportedError.Errorf("UnsupportedForwarder(vendor=%s)", c.Vendor)
	}
	if err != nil {
		return err
	}
	logger.AddHook(&HookWrapper{h: h, lvs: lvs})
	return nil
}

func newFluentHook(c *ForwarderConfig, lvs []logrus.Level) (logrus.Hook, error) {
	network, hostPort, err := c.NetworkAndHostPort("tcp")
	if err != nil {
		return nil, err
	}
	host, port := splitHostPort(hostPort)
	opt := struct {
		Timeout      time.Duration `json:"timeout"`
		WriteTimeout time.Duration `json:"write_timeout"`
		RetryWait    int           `json:"retry_wait"`
		MaxRetry     int           `json:"max_retry"`
	}{
		Timeout:   3 * time.Second,
		RetryWait: 500,
		MaxRetry:  13,
	}
	if err = c.UnmarshalByOptions(&opt); err != nil {
		return nil, err
	}
	return logrus_fluent.NewWithConfig(logrus_fluent.Config{
		DefaultTag:          c.Name,
		FluentNetwork:       network,
		Host:                host,
		Port:                port,
		LogLevels:           lvs,
		Timeout:             opt.Timeout,
		WriteTimeout:        opt.WriteTimeout,
		RetryWait:           opt.RetryWait,
		MaxRetry:            opt.MaxRetry,
		DefaultMessageField: "message",
		SubSecondPrecision:  true,
	})
}

func newLogstashHook(c *ForwarderConfig) (logrus.Hook, error) {
	network, hostPort, err := c.NetworkAndHostPort("tcp")
	if err != nil {
		return nil, err
	}
	h, err := logrustash.NewHook(network, hostPort, c.Name)
	if err != nil {
		return nil, err
	}
	h.TimeFormat = c.TimeFormat
	return h, nil
}
