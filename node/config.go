package node

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/service/event"
	"github.com/icon-project/govote/service/vote"
)

const (
	DefaultDBType   = string(db.GoLevelDBBackend)
	DefaultDBName   = "govote"
	DefaultRPCAddr  = ":9080"
	DefaultSockName = "cli.sock"
)

type Config struct {
	BaseDir         string   `json:"base_dir"`
	DBType          string   `json:"db_type"`
	Owner           string   `json:"owner"`
	RPCAddr         string   `json:"rpc_addr"`
	RPCDump         bool     `json:"rpc_dump"`
	RPCIncludeDebug bool     `json:"rpc_include_debug"`
	RPCBatchLimit   int      `json:"rpc_batch_limit"`
	WSMaxSession    int      `json:"ws_max_session"`
	Metrics         bool     `json:"metrics"`
	AdminSocket     string   `json:"admin_socket"` // relative path
	ForwardTimeout  string   `json:"forward_timeout"`
	DefaultOptions  []string `json:"default_options,omitempty"`

	EventNATS *event.NATSConfig `json:"event_nats,omitempty"`

	FilePath string `json:"-"` // absolute path

	// build info
	BuildVersion string `json:"-"`
	BuildTags    string `json:"-"`
}

func (c *Config) ResolveAbsolute(targetPath string) string {
	return ResolveAbsolute(c.FilePath, targetPath)
}

func (c *Config) ResolveRelative(targetPath string) string {
	absPath, _ := filepath.Abs(targetPath)
	base, _ := filepath.Abs(filepath.Dir(c.FilePath))
	r, _ := filepath.Rel(base, absPath)
	return r
}

func ResolveAbsolute(baseFile, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	if baseFile == "" {
		r, _ := filepath.Abs(targetPath)
		return r
	}
	if !filepath.IsAbs(baseFile) {
		baseFile, _ = filepath.Abs(baseFile)
	}
	return filepath.Clean(path.Join(filepath.Dir(baseFile), targetPath))
}

// SetFilePath moves the configuration file. Relative paths are adjusted
// to keep pointing the same locations.
func (c *Config) SetFilePath(path string) string {
	o := c.FilePath
	c.FilePath, _ = filepath.Abs(path)
	if c.BaseDir != "" {
		c.BaseDir = c.ResolveRelative(ResolveAbsolute(o, c.BaseDir))
	}
	if c.AdminSocket != "" {
		c.AdminSocket = c.ResolveRelative(ResolveAbsolute(o, c.AdminSocket))
	}
	return o
}

func (c *Config) FillEmpty() {
	if c.BaseDir == "" {
		c.BaseDir = path.Join(".", ".govote")
	}
	if c.DBType == "" {
		c.DBType = DefaultDBType
	}
	if c.RPCAddr == "" {
		c.RPCAddr = DefaultRPCAddr
	}
	if c.RPCBatchLimit == 0 {
		c.RPCBatchLimit = jsonrpc.DefaultLimitOfBatch
	}
	if c.AdminSocket == "" {
		c.AdminSocket = path.Join(c.BaseDir, DefaultSockName)
	}
	if c.ForwardTimeout == "" {
		c.ForwardTimeout = vote.DefaultForwardTimeout.String()
	}
}

func (c *Config) AbsBaseDir() string {
	return c.ResolveAbsolute(c.BaseDir)
}

func (c *Config) OwnerAddress() (common.Address, error) {
	if c.Owner == "" {
		return common.Address{}, nil
	}
	addr, err := common.NewAddressFromString(c.Owner)
	if err != nil {
		return addr, errors.IllegalArgumentError.Wrapf(err, "InvalidOwner(%s)", c.Owner)
	}
	return addr, nil
}

func (c *Config) ForwardTimeoutDuration() (time.Duration, error) {
	if c.ForwardTimeout == "" {
		return vote.DefaultForwardTimeout, nil
	}
	d, err := time.ParseDuration(c.ForwardTimeout)
	if err != nil || d <= 0 {
		return 0, errors.IllegalArgumentError.Errorf("InvalidForwardTimeout(%s)", c.ForwardTimeout)
	}
	return d, nil
}

// Validate checks values which can't be fixed by FillEmpty.
func (c *Config) Validate() error {
	if _, err := c.OwnerAddress(); err != nil {
		return err
	}
	if _, err := c.ForwardTimeoutDuration(); err != nil {
		return err
	}
	for _, t := range db.RegisteredBackendTypes() {
		if t == c.DBType {
			return nil
		}
	}
	return errors.IllegalArgumentError.Errorf("UnknownDBType(%s)", c.DBType)
}

func LoadConfig(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg := new(Config)
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, errors.IllegalArgumentError.Wrapf(err, "InvalidConfig(file=%s)", file)
	}
	cfg.FilePath, _ = filepath.Abs(file)
	return cfg, nil
}
