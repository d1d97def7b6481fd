package jsonrpc

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/labstack/echo/v4"

	"github.com/icon-project/govote/common/errors"
)

const Version = "2.0"

type Request struct {
	Version string           `json:"jsonrpc" validate:"required,version"`
	Method  *string          `json:"method" validate:"required"`
	Params  *json.RawMessage `json:"params,omitempty"`
	ID      *json.RawMessage `json:"id"`
}

type Response struct {
	Version string           `json:"jsonrpc"`
	Result  interface{}      `json:"result,omitempty"`
	Error   *Error           `json:"error,omitempty"`
	ID      *json.RawMessage `json:"id"`
}

type Context struct {
	echo.Context
	debug bool
}

func NewContext(c echo.Context, debug bool) *Context {
	return &Context{Context: c, debug: debug}
}

func (ctx *Context) IncludeDebug() bool {
	return ctx.debug
}

// Ctx returns the context of the request.
func (ctx *Context) Ctx() context.Context {
	return ctx.Request().Context()
}

type Params struct {
	rawMessage *json.RawMessage
	validator  echo.Validator
}

func (p *Params) Convert(v interface{}) error {
	if p.rawMessage == nil {
		return ErrInvalidParams("params message is null")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.IllegalArgumentError.New("v is not pointer type or v is nil")
	}
	if err := json.Unmarshal(*p.rawMessage, v); err != nil {
		return ErrInvalidParams(err.Error())
	}
	if p.validator != nil {
		if err := p.validator.Validate(v); err != nil {
			return ErrInvalidParams(err.Error())
		}
	}
	return nil
}

func (p *Params) RawMessage() []byte {
	if p.rawMessage == nil {
		return nil
	}
	return *p.rawMessage
}

func (p *Params) IsEmpty() bool {
	return p.rawMessage == nil
}
