package client

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/common/wallet"
	"github.com/icon-project/govote/module"
	"github.com/icon-project/govote/server"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/service"
	"github.com/icon-project/govote/service/auth"
)

type testEnv struct {
	owner  module.Wallet
	svc    *service.Manager
	client *ClientV1
}

func newTestEnv(t *testing.T) *testEnv {
	owner := wallet.New()
	logger := log.NewWithOutput(io.Discard)
	svc, err := service.NewManager(db.NewMapDB(), &service.Config{
		Owner:          owner.Address(),
		DefaultOptions: []string{"yes", "no"},
	}, logger)
	require.NoError(t, err)
	srv := server.NewManager(server.Config{}, svc, logger)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		_ = svc.Close()
	})
	return &testEnv{
		owner:  owner,
		svc:    svc,
		client: NewClientV1(hs.URL + "/api/v1"),
	}
}

func TestClientV1_Vote(t *testing.T) {
	env := newTestEnv(t)
	w := wallet.New()
	require.NoError(t, env.svc.Signers().AddSigner(env.owner.Address(), w.Address()))
	_, err := env.svc.CreateProposal(env.owner.Address(), "budget", nil)
	require.NoError(t, err)

	valid, err := env.client.IsValidSigner(w.Address())
	assert.NoError(t, err)
	assert.True(t, valid)

	valid, err = env.client.IsValidSigner(env.owner.Address())
	assert.NoError(t, err)
	assert.False(t, valid)

	r, err := env.client.Vote(w, 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Completed", r.State)
	assert.Equal(t, w.Address(), *r.Signer)

	nonce, err := env.client.GetNonce(w.Address())
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)

	// replay of the first vote
	param, err := SignVote(w, 1, 1, 0)
	assert.NoError(t, err)
	r, err = env.client.SubmitVote(param)
	assert.NoError(t, err)
	assert.Equal(t, "Rejected", r.State)
	assert.Equal(t, "StaleOrFutureNonce", r.Reason)

	p, err := env.client.GetProposal(1)
	assert.NoError(t, err)
	assert.Equal(t, "budget", p.Title)
	assert.Equal(t, []common.HexUint64{common.NewHexUint64(0), common.NewHexUint64(1)}, p.Tally)

	s, err := env.client.GetSigner(w.Address())
	assert.NoError(t, err)
	assert.True(t, s.Valid)
	assert.Equal(t, uint64(1), s.Nonce.Value)
}

func TestClientV1_Queries(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.CreateProposal(env.owner.Address(), "budget", nil)
	require.NoError(t, err)

	ok, err := env.client.ResolveProposal(1)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.client.ResolveProposal(99)
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = env.client.GetProposal(99)
	if assert.Error(t, err) {
		je, isJE := err.(*jsonrpc.Error)
		assert.True(t, isJE)
		if isJE {
			assert.Equal(t, jsonrpc.ErrorCodeNotFound, je.Code)
		}
	}

	h, err := env.client.GetVoteMessageHash(1, 2, 3)
	assert.NoError(t, err)
	m := auth.VoteMessage{VoteOption: 2, ProposalID: 1, Nonce: 3}
	assert.Equal(t, common.HexBytes(m.Bytes()), h.Message)
	assert.Equal(t, common.HexBytes(auth.InnerHash(m)), h.InnerHash)
	assert.Equal(t, common.HexBytes(auth.MessageHash(m)), h.Hash)
}

func TestClientV1_MonitorEvents(t *testing.T) {
	env := newTestEnv(t)
	w := wallet.New()
	require.NoError(t, env.svc.Signers().AddSigner(env.owner.Address(), w.Address()))
	_, err := env.svc.CreateProposal(env.owner.Address(), "budget", nil)
	require.NoError(t, err)

	events := make(chan *module.Event, 8)
	cancelCh := make(chan bool)
	defer close(cancelCh)
	err = env.client.MonitorEvents(&server.EventRequest{
		Types: []module.EventType{module.EventVoteForwarded},
	}, func(e *module.Event) {
		events <- e
	}, cancelCh)
	require.NoError(t, err)

	r, err := env.client.Vote(w, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "Completed", r.State)

	select {
	case e := <-events:
		assert.Equal(t, module.EventVoteForwarded, e.Type)
		assert.Equal(t, w.Address(), *e.Signer)
		assert.Equal(t, uint64(1), *e.ProposalID)
		assert.Equal(t, uint64(0), *e.Option)
	case <-time.After(3 * time.Second):
		t.Fatal("no event")
	}
}
