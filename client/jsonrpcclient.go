package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/server/jsonrpc"
)

type JsonRpcClient struct {
	hc           *http.Client
	Endpoint     string
	CustomHeader map[string]string
	seq          int64
}

func NewJsonRpcClient(hc *http.Client, endpoint string) *JsonRpcClient {
	return &JsonRpcClient{hc: hc, Endpoint: endpoint}
}

func (c *JsonRpcClient) _do(req *http.Request) (resp *http.Response, err error) {
	resp, err = c.hc.Do(req)
	if err != nil {
		return
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("http-status(%s) is not StatusOK", resp.Status)
		return
	}
	return
}

func (c *JsonRpcClient) newRequest(reqB []byte) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodPost, c.Endpoint, bytes.NewReader(reqB))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range c.CustomHeader {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Do calls the method with the params. The error of the response is
// returned as *jsonrpc.Error.
func (c *JsonRpcClient) Do(method string, reqPtr, respPtr interface{}) (jrResp *Response, err error) {
	id := json.RawMessage(strconv.FormatInt(atomic.AddInt64(&c.seq, 1), 10))
	jrReq := &jsonrpc.Request{
		ID:      &id,
		Version: jsonrpc.Version,
		Method:  &method,
	}
	if reqPtr != nil {
		b, mErr := json.Marshal(reqPtr)
		if mErr != nil {
			err = mErr
			return
		}
		params := json.RawMessage(b)
		jrReq.Params = &params
	}
	reqB, err := json.Marshal(jrReq)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(reqB)
	if err != nil {
		return
	}

	resp, err := c._do(req)
	if err != nil {
		if resp != nil {
			jrResp, _ = decodeResponseBody(resp, nil)
			if jrResp != nil && jrResp.Error != nil {
				err = jrResp.Error
			}
		}
		return
	}
	jrResp, err = decodeResponseBody(resp, respPtr)
	return
}

func (c *JsonRpcClient) Raw(reqB []byte) (resp *http.Response, err error) {
	req, err := c.newRequest(reqB)
	if err != nil {
		return
	}
	return c._do(req)
}

// Response keeps the result undecoded so it can be decoded into the type
// of the caller.
type Response struct {
	Version string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *jsonrpc.Error   `json:"error,omitempty"`
	ID      *json.RawMessage `json:"id"`
}

func decodeResponseBody(resp *http.Response, respPtr interface{}) (jrResp *Response, err error) {
	defer resp.Body.Close()
	if err = json.NewDecoder(resp.Body).Decode(&jrResp); err != nil {
		return
	}
	if jrResp.Error != nil {
		err = jrResp.Error
		return
	}
	if respPtr != nil {
		if len(jrResp.Result) == 0 {
			err = errors.InvalidStateError.New("NoResult")
			return
		}
		err = json.Unmarshal(jrResp.Result, respPtr)
	}
	return
}
