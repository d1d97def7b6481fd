package jsonrpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLimitOfBatch = 32

	// batchConcurrency bounds the requests of a batch running at once.
	batchConcurrency = 8
)

type Handler func(ctx *Context, params *Params) (result interface{}, err error)

// Observer is called after each method call with the start time.
type Observer func(method string, ts time.Time, err error)

type repoOptions struct {
	limitOfBatch int
	debug        bool
	observer     Observer
}

type MethodRepository struct {
	lock    sync.RWMutex
	methods map[string]Handler
	opts    repoOptions
}

func NewMethodRepository() *MethodRepository {
	return &MethodRepository{
		methods: make(map[string]Handler),
		opts:    repoOptions{limitOfBatch: DefaultLimitOfBatch},
	}
}

func (mr *MethodRepository) update(fn func(o *repoOptions)) {
	mr.lock.Lock()
	defer mr.lock.Unlock()
	fn(&mr.opts)
}

func (mr *MethodRepository) options() repoOptions {
	mr.lock.RLock()
	defer mr.lock.RUnlock()
	return mr.opts
}

// SetLimitOfBatch ignores non-positive limits.
func (mr *MethodRepository) SetLimitOfBatch(limit int) {
	mr.update(func(o *repoOptions) {
		if limit > 0 {
			o.limitOfBatch = limit
		}
	})
}

// SetIncludeDebug makes errors include details of internal failures.
func (mr *MethodRepository) SetIncludeDebug(yn bool) {
	mr.update(func(o *repoOptions) { o.debug = yn })
}

func (mr *MethodRepository) SetObserver(ob Observer) {
	mr.update(func(o *repoOptions) { o.observer = ob })
}

func (mr *MethodRepository) RegisterMethod(method string, handler Handler) {
	if method == "" || handler == nil {
		return
	}
	mr.lock.Lock()
	defer mr.lock.Unlock()
	mr.methods[method] = handler
}

func (mr *MethodRepository) GetMethod(method string) Handler {
	mr.lock.RLock()
	defer mr.lock.RUnlock()
	return mr.methods[method]
}

func decodeRequest(raw json.RawMessage) (*Request, error) {
	req := new(Request)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return req, dec.Decode(req)
}

// call runs a single request. A request without id is a notification: it
// is executed, but nil is returned so nothing is written for it.
func (mr *MethodRepository) call(ctx *Context, ob Observer, raw json.RawMessage) *Response {
	req, err := decodeRequest(raw)
	resp := &Response{Version: Version, ID: req.ID}
	if err != nil || req.Method == nil || ctx.Validate(req) != nil {
		resp.Error = ErrInvalidRequest()
		return resp
	}
	handler := mr.GetMethod(*req.Method)
	if handler == nil {
		resp.Error = ErrMethodNotFound()
		return resp
	}

	ts := time.Now()
	result, err := handler(ctx, &Params{
		rawMessage: req.Params,
		validator:  ctx.Echo().Validator,
	})
	if ob != nil {
		ob(*req.Method, ts, err)
	}
	if req.ID == nil {
		return nil
	}
	if err != nil {
		resp.Error = ErrorOf(err, ctx.IncludeDebug())
	} else {
		resp.Result = result
	}
	return resp
}

func (mr *MethodRepository) callBatch(ctx *Context, ob Observer, raws []json.RawMessage) []*Response {
	results := make([]*Response, len(raws))
	var eg errgroup.Group
	eg.SetLimit(batchConcurrency)
	for i := range raws {
		i := i
		eg.Go(func() error {
			results[i] = mr.call(ctx, ob, raws[i])
			return nil
		})
	}
	_ = eg.Wait()

	resps := results[:0]
	for _, r := range results {
		if r != nil {
			resps = append(resps, r)
		}
	}
	return resps
}

// Handle serves a request or a batch of requests. The raw body is stored
// in the context by the JsonRpc middleware.
func (mr *MethodRepository) Handle(c echo.Context) error {
	opts := mr.options()
	ctx := NewContext(c, opts.debug)

	raw, ok := c.Get("raw").(json.RawMessage)
	if !ok {
		return ErrInternal("no raw message")
	}

	var raws []json.RawMessage
	if json.Unmarshal(raw, &raws) != nil {
		resp := mr.call(ctx, opts.observer, raw)
		switch {
		case resp == nil:
			return c.NoContent(http.StatusOK)
		case resp.Error != nil:
			return c.JSON(StatusOf(resp.Error.Code), resp)
		default:
			return c.JSON(http.StatusOK, resp)
		}
	}

	switch {
	case len(raws) == 0:
		return c.JSON(http.StatusBadRequest, &Response{
			Version: Version,
			Error:   ErrInvalidRequest(),
		})
	case len(raws) > opts.limitOfBatch:
		return c.JSON(http.StatusServiceUnavailable, &Response{
			Version: Version,
			Error:   ErrInvalidRequest("too many request"),
		})
	}
	resps := mr.callBatch(ctx, opts.observer, raws)
	if len(resps) == 0 {
		return c.NoContent(http.StatusOK)
	}
	return c.JSON(http.StatusOK, resps)
}

func StatusOf(c ErrorCode) int {
	switch c {
	case ErrorCodeMethodNotFound, ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeInternal:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// ErrorHandler writes the error as a JSON-RPC response.
func ErrorHandler(err error, c echo.Context) {
	re, ok := err.(*Error)
	if !ok {
		re = ErrInternal()
	}
	if c.Response().Committed {
		return
	}
	res := &Response{Version: Version, Error: re}
	if req, ok := c.Get("request").(*Request); ok && req != nil {
		res.ID = req.ID
	}
	if err := c.JSON(StatusOf(re.Code), res); err != nil {
		c.Logger().Error(err)
	}
}
