package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/crypto"
	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/service"
	"github.com/icon-project/govote/service/auth"
)

type testKey struct {
	sk   *crypto.PrivateKey
	addr common.Address
}

func newTestKey() *testKey {
	sk, pk := crypto.GenerateKeyPair()
	return &testKey{sk, common.NewAccountAddressFromPublicKey(pk)}
}

func (k *testKey) sign(t *testing.T, option, id, nonce uint64) string {
	sig, err := auth.Sign(auth.VoteMessage{
		VoteOption: option,
		ProposalID: id,
		Nonce:      nonce,
	}, k.sk)
	require.NoError(t, err)
	bs, err := sig.SerializeRSV()
	require.NoError(t, err)
	return common.HexBytes(bs).String()
}

func newTestLogger() log.Logger {
	return log.NewWithOutput(io.Discard)
}

type testServer struct {
	owner common.Address
	svc   *service.Manager
	srv   *Manager
}

func newTestServer(t *testing.T) *testServer {
	owner := newTestKey().addr
	logger := newTestLogger()
	svc, err := service.NewManager(db.NewMapDB(), &service.Config{Owner: owner}, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = svc.Close()
	})
	srv := NewManager(Config{}, svc, logger)
	return &testServer{owner, svc, srv}
}

type testResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonrpc.Error  `json:"error"`
	ID     json.RawMessage `json:"id"`
}

func (ts *testServer) post(t *testing.T, body string) (int, []byte) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func (ts *testServer) call(t *testing.T, method string, params interface{}) *testResponse {
	bs, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)
	_, body := ts.post(t, string(bs))
	resp := new(testResponse)
	require.NoError(t, json.Unmarshal(body, resp), "body=%s", body)
	return resp
}

func hex(v uint64) string {
	return fmt.Sprintf("%#x", v)
}

func TestServer_SubmitVote(t *testing.T) {
	ts := newTestServer(t)
	a := newTestKey()
	require.NoError(t, ts.svc.Signers().AddSigner(ts.owner, a.addr))
	info, err := ts.svc.CreateProposal(ts.owner, "lunch", []string{"pizza", "noodle"})
	require.NoError(t, err)

	params := map[string]string{
		"signer":     a.addr.String(),
		"voteOption": "0x1",
		"proposalId": hex(info.ID),
		"nonce":      "0x0",
		"signature":  a.sign(t, 1, info.ID, 0),
	}
	resp := ts.call(t, "gov_submitVote", params)
	require.Nil(t, resp.Error)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, "Completed", res["state"])
	assert.Equal(t, "0x1", res["nonce"])
	assert.Equal(t, a.addr.String(), res["signer"])
	assert.Nil(t, res["reason"])

	// replay
	resp = ts.call(t, "gov_submitVote", params)
	require.Nil(t, resp.Error)
	res = nil
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, "Rejected", res["state"])
	assert.Equal(t, "StaleOrFutureNonce", res["reason"])
	assert.Equal(t, "0x1", res["nonce"])

	resp = ts.call(t, "gov_getNonce", map[string]string{"address": a.addr.String()})
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `"0x1"`, string(resp.Result))

	resp = ts.call(t, "gov_getProposal", map[string]string{"id": hex(info.ID)})
	require.Nil(t, resp.Error)
	var p map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Result, &p))
	assert.Equal(t, "lunch", p["title"])
	assert.Equal(t, []interface{}{"0x0", "0x1"}, p["tally"])
}

func TestServer_SubmitVoteUnknownProposal(t *testing.T) {
	ts := newTestServer(t)
	a := newTestKey()
	require.NoError(t, ts.svc.Signers().AddSigner(ts.owner, a.addr))

	resp := ts.call(t, "gov_submitVote", map[string]string{
		"signer":     a.addr.String(),
		"voteOption": "0x1",
		"proposalId": "0x63",
		"nonce":      "0x0",
		"signature":  a.sign(t, 1, 99, 0),
	})
	require.Nil(t, resp.Error)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	assert.Equal(t, "Rejected", res["state"])
	assert.Equal(t, "UnknownProposal", res["reason"])
	assert.Equal(t, "0x0", res["nonce"])

	resp = ts.call(t, "gov_resolveProposal", map[string]string{"id": "0x63"})
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"id":"0x63","registered":false}`, string(resp.Result))
}

func TestServer_Queries(t *testing.T) {
	ts := newTestServer(t)
	a := newTestKey()

	resp := ts.call(t, "gov_isValidSigner", map[string]string{"address": a.addr.String()})
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `false`, string(resp.Result))

	require.NoError(t, ts.svc.Signers().AddSigner(ts.owner, a.addr))
	resp = ts.call(t, "gov_isValidSigner", map[string]string{"address": a.addr.String()})
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `true`, string(resp.Result))

	resp = ts.call(t, "gov_getSigner", map[string]string{"address": a.addr.String()})
	require.Nil(t, resp.Error)
	assert.JSONEq(t,
		fmt.Sprintf(`{"address":"%s","valid":true,"nonce":"0x0"}`, a.addr),
		string(resp.Result))

	resp = ts.call(t, "gov_getProposal", map[string]string{"id": "0x5"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.ErrorCodeNotFound, resp.Error.Code)

	resp = ts.call(t, "gov_getVoteMessageHash", map[string]string{
		"voteOption": "0x1",
		"proposalId": "0x7",
		"nonce":      "0x0",
	})
	require.Nil(t, resp.Error)
	var h map[string]string
	require.NoError(t, json.Unmarshal(resp.Result, &h))
	msg := auth.VoteMessage{VoteOption: 1, ProposalID: 7}
	assert.Equal(t, common.HexBytes(auth.MessageHash(msg)).String(), h["hash"])
	assert.Equal(t, common.HexBytes(auth.InnerHash(msg)).String(), h["innerHash"])
}

func TestServer_InvalidRequests(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.call(t, "gov_unknown", map[string]string{})
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.ErrorCodeMethodNotFound, resp.Error.Code)

	resp = ts.call(t, "gov_getNonce", map[string]string{"address": "hx1234"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.ErrorCodeInvalidParams, resp.Error.Code)

	resp = ts.call(t, "gov_submitVote", map[string]string{
		"signer":     newTestKey().addr.String(),
		"voteOption": "0x1",
		"proposalId": "0x1",
		"nonce":      "0x0",
		"signature":  "0x1234",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.ErrorCodeInvalidParams, resp.Error.Code)

	code, body := ts.post(t, `{"jsonrpc":"2.0",`)
	assert.Equal(t, http.StatusBadRequest, code)
	var r testResponse
	require.NoError(t, json.Unmarshal(body, &r))
	require.NotNil(t, r.Error)
	assert.Equal(t, jsonrpc.ErrorCodeParse, r.Error.Code)
}

func TestServer_Batch(t *testing.T) {
	ts := newTestServer(t)
	a := newTestKey()
	body := fmt.Sprintf(`[
		{"jsonrpc":"2.0","id":1,"method":"gov_getNonce","params":{"address":"%s"}},
		{"jsonrpc":"2.0","id":2,"method":"gov_isValidSigner","params":{"address":"%s"}}
	]`, a.addr, a.addr)
	code, bs := ts.post(t, body)
	assert.Equal(t, http.StatusOK, code)
	var resps []testResponse
	require.NoError(t, json.Unmarshal(bs, &resps))
	require.Len(t, resps, 2)
	assert.JSONEq(t, `"0x0"`, string(resps[0].Result))
	assert.JSONEq(t, `false`, string(resps[1].Result))

	code, _ = ts.post(t, `[]`)
	assert.Equal(t, http.StatusBadRequest, code)
}
