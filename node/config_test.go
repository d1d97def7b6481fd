package node

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/service/vote"
)

const testOwner = "0x00112233445566778899aabbccddeeff00112233"

func TestConfig_FillEmpty(t *testing.T) {
	cfg := &Config{}
	cfg.FillEmpty()
	assert.Equal(t, ".govote", cfg.BaseDir)
	assert.Equal(t, DefaultDBType, cfg.DBType)
	assert.Equal(t, DefaultRPCAddr, cfg.RPCAddr)
	assert.Equal(t, jsonrpc.DefaultLimitOfBatch, cfg.RPCBatchLimit)
	assert.Equal(t, filepath.Join(".govote", DefaultSockName), cfg.AdminSocket)

	d, err := cfg.ForwardTimeoutDuration()
	assert.NoError(t, err)
	assert.Equal(t, vote.DefaultForwardTimeout, d)

	cfg = &Config{BaseDir: "data", RPCAddr: ":1234"}
	cfg.FillEmpty()
	assert.Equal(t, ":1234", cfg.RPCAddr)
	assert.Equal(t, filepath.Join("data", DefaultSockName), cfg.AdminSocket)
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Owner: testOwner}
	cfg.FillEmpty()
	assert.NoError(t, cfg.Validate())
	owner, err := cfg.OwnerAddress()
	assert.NoError(t, err)
	assert.Equal(t, testOwner, owner.String())

	cases := []Config{
		{Owner: "hx1234"},
		{ForwardTimeout: "soon"},
		{ForwardTimeout: "-1s"},
		{DBType: "paper"},
	}
	for _, c := range cases {
		c.FillEmpty()
		err := c.Validate()
		assert.Error(t, err, "config=%+v", c)
		assert.Equal(t, errors.IllegalArgumentError, errors.CodeOf(err))
	}

	cfg = &Config{ForwardTimeout: "250ms"}
	d, err := cfg.ForwardTimeoutDuration()
	assert.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestConfig_ResolvePaths(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		BaseDir:     "data",
		AdminSocket: "data/cli.sock",
		FilePath:    filepath.Join(dir, "conf", "govote.json"),
	}

	assert.Equal(t, filepath.Join(dir, "conf", "data"), cfg.AbsBaseDir())
	assert.Equal(t, "/tmp/abs", cfg.ResolveAbsolute("/tmp/abs"))

	// relative paths keep their locations when the file moves
	cfg.SetFilePath(filepath.Join(dir, "govote.json"))
	assert.Equal(t, filepath.Join("conf", "data"), cfg.BaseDir)
	assert.Equal(t, filepath.Join(dir, "conf", "data", "cli.sock"), cfg.ResolveAbsolute(cfg.AdminSocket))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "govote.json")
	err := os.WriteFile(file, []byte(`{
		"base_dir": "data",
		"owner": "`+testOwner+`",
		"default_options": ["yes", "no"],
		"event_nats": {"url": "nats://localhost:4222"}
	}`), 0644)
	assert.NoError(t, err)

	cfg, err := LoadConfig(file)
	assert.NoError(t, err)
	assert.Equal(t, file, cfg.FilePath)
	assert.Equal(t, testOwner, cfg.Owner)
	assert.Equal(t, []string{"yes", "no"}, cfg.DefaultOptions)
	assert.Equal(t, "nats://localhost:4222", cfg.EventNATS.URL)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.AbsBaseDir())

	assert.NoError(t, os.WriteFile(file, []byte("{"), 0644))
	_, err = LoadConfig(file)
	assert.Equal(t, errors.IllegalArgumentError, errors.CodeOf(err))

	_, err = LoadConfig(filepath.Join(dir, "none.json"))
	assert.Error(t, err)
}
