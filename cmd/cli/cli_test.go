package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/wallet"
	"github.com/icon-project/govote/service/proposal"
	"github.com/icon-project/govote/service/signer"
)

const testOwner = "0x00112233445566778899aabbccddeeff00112233"

func TestMergeWithViper(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "server.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"owner": "`+testOwner+`",
		"rpc_addr": ":7000",
		"db_type": "mapdb",
		"log_level": "info",
		"log_forwarder": {"vendor": "fluentd", "address": "localhost:24224"}
	}`), 0644))

	root, vc := NewCommand(nil, nil, "govote", "test")
	_, svc := NewServerCmd(root, vc, "v0", "test", nil)
	svc.Set("config", file)
	svc.Set("nats", "nats://localhost:4222")

	cfg := &ServerConfig{}
	cfg.FilePath = file
	require.NoError(t, MergeWithViper(svc, cfg))
	cfg.FillEmpty()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, testOwner, cfg.Owner)
	assert.Equal(t, ":7000", cfg.RPCAddr)
	assert.Equal(t, "mapdb", cfg.DBType)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "fluentd", cfg.LogForwarder.Vendor)
	assert.Equal(t, "nats://localhost:4222", cfg.EventNATS.URL)
	assert.Equal(t, filepath.Join(dir, ".govote"), cfg.AbsBaseDir())
}

func TestValidateFlags(t *testing.T) {
	root, _ := NewCommand(nil, nil, "govote", "test")
	fs := root.Flags()
	fs.String("uri", "", "uri")
	fs.String("other", "", "other")
	assert.Error(t, ValidateFlags(fs, "uri"))
	assert.NoError(t, fs.Set("uri", "http://localhost"))
	assert.NoError(t, ValidateFlags(fs, "uri"))
}

func TestTables(t *testing.T) {
	addr := common.MustParseAddress(testOwner)
	st := SignersToTable([]*signer.Signer{
		{Address: addr, Valid: true, Nonce: 3},
	}, DefaultMaxColWidth).String()
	assert.Contains(t, st, testOwner)
	assert.Contains(t, st, "true")

	pt := ProposalsToTable([]*proposal.Info{
		{ID: 1, Title: "budget", Options: []string{"yes", "no"}, Tally: []uint64{2, 1}},
		{ID: 2, Options: []string{"a"}, Closed: true},
	}, DefaultMaxColWidth).String()
	assert.Contains(t, pt, "0:yes(2) 1:no(1)")
	assert.Contains(t, pt, "0:a(-)")
}

func TestParseVoteArgs(t *testing.T) {
	vs, err := parseVoteArgs([]string{"0x1", "2", "0x10"})
	assert.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 16}, vs)

	_, err = parseVoteArgs([]string{"one"})
	assert.Error(t, err)
}

func TestWalletFromViper(t *testing.T) {
	dir := t.TempDir()
	w := wallet.New()
	ks, err := wallet.KeyStoreFromWallet(w, []byte(DefaultKeyStorePass))
	require.NoError(t, err)
	ksFile := filepath.Join(dir, "ks.json")
	require.NoError(t, os.WriteFile(ksFile, ks, 0600))

	root, vc := NewCommand(nil, nil, "govote", "test")
	_, voteVc := NewVoteCmd(root, vc)
	voteVc.Set("key_store", ksFile)
	w2, err := WalletFromViper(voteVc)
	assert.NoError(t, err)
	assert.Equal(t, w.Address(), w2.Address())

	voteVc.Set("key_password", "wrong")
	_, err = WalletFromViper(voteVc)
	assert.Error(t, err)
}

func TestJsonPrettyPrintln(t *testing.T) {
	buf := new(bytes.Buffer)
	assert.NoError(t, JsonPrettyPrintln(buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestGenerateMarkdown(t *testing.T) {
	root, vc := NewCommand(nil, nil, "govote", "Govote CLI")
	NewSignerCmd(root, vc)
	NewGenerateMarkdownCommand(root)

	buf := new(bytes.Buffer)
	assert.NoError(t, GenerateMarkdown(root, buf))
	s := buf.String()
	assert.Contains(t, s, "# Govote\n")
	assert.Contains(t, s, "## govote signer add")
	assert.Contains(t, s, "| [govote signer](#govote-signer) |")
	assert.Contains(t, s, "| --node_sock, -s |")
	assert.NotContains(t, s, "govote help")
}

func TestJsonPrettySaveFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sub", "config.json")
	assert.NoError(t, JsonPrettySaveFile(file, 0644, map[string]string{"k": "v"}))
	bs, err := os.ReadFile(file)
	assert.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": \"v\"\n}", string(bs))
}
