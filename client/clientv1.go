package client

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/module"
	"github.com/icon-project/govote/server"
	"github.com/icon-project/govote/server/jsonrpc"
	v1 "github.com/icon-project/govote/server/v1"
	"github.com/icon-project/govote/service/auth"
)

// ClientV1 calls the gov_* methods of server/v1.
type ClientV1 struct {
	*JsonRpcClient
}

func NewClientV1(endpoint string) *ClientV1 {
	return &ClientV1{JsonRpcClient: NewJsonRpcClient(&http.Client{}, endpoint)}
}

func hexInt(v uint64) jsonrpc.HexInt {
	return jsonrpc.HexInt(common.FormatUint(v))
}

func (c *ClientV1) SubmitVote(param *v1.SubmitVoteParam) (*v1.VoteResult, error) {
	r := &v1.VoteResult{}
	if _, err := c.Do("gov_submitVote", param, r); err != nil {
		return nil, err
	}
	return r, nil
}

// SignVote builds the parameter of gov_submitVote signed by the wallet.
func SignVote(w module.Wallet, proposalID, option, nonce uint64) (*v1.SubmitVoteParam, error) {
	m := auth.VoteMessage{
		VoteOption: option,
		ProposalID: proposalID,
		Nonce:      nonce,
	}
	sig, err := w.Sign(auth.MessageHash(m))
	if err != nil {
		return nil, err
	}
	return &v1.SubmitVoteParam{
		Signer:     jsonrpc.Address(w.Address().String()),
		VoteOption: hexInt(option),
		ProposalID: hexInt(proposalID),
		Nonce:      hexInt(nonce),
		Signature:  jsonrpc.HexBytes(common.HexBytes(sig).String()),
	}, nil
}

// Vote signs the vote with the current nonce of the wallet and submits it.
func (c *ClientV1) Vote(w module.Wallet, proposalID, option uint64) (*v1.VoteResult, error) {
	nonce, err := c.GetNonce(w.Address())
	if err != nil {
		return nil, err
	}
	param, err := SignVote(w, proposalID, option, nonce)
	if err != nil {
		return nil, err
	}
	return c.SubmitVote(param)
}

func addressParam(addr common.Address) *v1.AddressParam {
	return &v1.AddressParam{Address: jsonrpc.Address(addr.String())}
}

func (c *ClientV1) IsValidSigner(addr common.Address) (bool, error) {
	var result bool
	if _, err := c.Do("gov_isValidSigner", addressParam(addr), &result); err != nil {
		return false, err
	}
	return result, nil
}

func (c *ClientV1) GetNonce(addr common.Address) (uint64, error) {
	var result common.HexUint64
	if _, err := c.Do("gov_getNonce", addressParam(addr), &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

func (c *ClientV1) GetSigner(addr common.Address) (*v1.SignerResult, error) {
	r := &v1.SignerResult{}
	if _, err := c.Do("gov_getSigner", addressParam(addr), r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *ClientV1) ResolveProposal(id uint64) (bool, error) {
	r := &v1.ResolveResult{}
	if _, err := c.Do("gov_resolveProposal", &v1.ProposalParam{ID: hexInt(id)}, r); err != nil {
		return false, err
	}
	return r.Registered, nil
}

func (c *ClientV1) GetProposal(id uint64) (*v1.ProposalResult, error) {
	r := &v1.ProposalResult{}
	if _, err := c.Do("gov_getProposal", &v1.ProposalParam{ID: hexInt(id)}, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (c *ClientV1) GetVoteMessageHash(proposalID, option, nonce uint64) (*v1.VoteMessageHash, error) {
	param := &v1.VoteMessageParam{
		VoteOption: hexInt(option),
		ProposalID: hexInt(proposalID),
		Nonce:      hexInt(nonce),
	}
	r := &v1.VoteMessageHash{}
	if _, err := c.Do("gov_getVoteMessageHash", param, r); err != nil {
		return nil, err
	}
	return r, nil
}

// MonitorEvents delivers events matching the request to cb until cancelCh
// is closed or the connection fails.
func (c *ClientV1) MonitorEvents(param *server.EventRequest, cb func(e *module.Event), cancelCh <-chan bool) error {
	endpoint := strings.Replace(c.Endpoint, "http", "ws", 1)
	conn, _, err := WSConnect(endpoint+"/events", nil, param)
	if err != nil {
		return err
	}
	WSReadJSONLoop(conn, func() interface{} { return new(module.Event) }, func(v interface{}) {
		if e, ok := v.(*module.Event); ok {
			cb(e)
		}
	}, cancelCh)
	return nil
}

// WSReadJSONLoop reads values made by alloc and passes them to cb. A read
// error is passed to cb and stops the loop.
func WSReadJSONLoop(c *websocket.Conn, alloc func() interface{}, cb func(v interface{}), cancelCh <-chan bool) {
	ch := make(chan interface{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer func() {
			close(ch)
			wg.Done()
		}()
		for {
			v := alloc()
			if err := c.ReadJSON(v); err != nil {
				cb(err)
				return
			}
			cb(v)
		}
	}()
	if cancelCh != nil {
		go func() {
			defer c.Close()
			select {
			case <-cancelCh:
			case <-ch:
			}
		}()
	} else {
		wg.Wait()
		_ = c.Close()
	}
}

func WSConnect(urlStr string, reqHeader http.Header, reqPtr interface{}) (c *websocket.Conn, wsResp *server.WSResponse, err error) {
	if reqPtr == nil {
		err = errors.IllegalArgumentError.New("reqPtr cannot be nil")
		return
	}
	var httpResp *http.Response
	c, httpResp, err = websocket.DefaultDialer.Dial(urlStr, reqHeader)
	if err != nil {
		if httpResp != nil {
			defer httpResp.Body.Close()
			wsResp = &server.WSResponse{}
			if dErr := json.NewDecoder(httpResp.Body).Decode(wsResp); dErr != nil {
				wsResp = nil
			}
		}
		err = errors.Wrapf(err, "FailToDial(url=%s)", urlStr)
		return
	}
	if err = c.WriteJSON(reqPtr); err == nil {
		wsResp = &server.WSResponse{}
		if err = c.ReadJSON(wsResp); err == nil {
			if wsResp.Code == 0 {
				return
			}
			err = errors.InvalidStateError.Errorf("SessionRejected(code=%d,msg=%s)",
				wsResp.Code, wsResp.Message)
		} else {
			wsResp = nil
		}
	}
	_ = c.Close()
	c = nil
	return
}
