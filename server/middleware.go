package server

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/server/v1"
	"github.com/icon-project/govote/service"
)

// JsonRpc keeps the body of the request as raw message for the method
// repository.
func JsonRpc() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var raw json.RawMessage
			if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
				return jsonrpc.ErrParse()
			}
			c.Set("raw", raw)
			return next(c)
		}
	}
}

func ServiceInjector(m *service.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(v1.ServiceKey, m)
			return next(c)
		}
	}
}

// Chunk()
func Chunk() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			if len(r.TransferEncoding) > 0 && r.TransferEncoding[0] == "chunked" {
				b, err := io.ReadAll(r.Body)
				if err != nil {
					return jsonrpc.ErrParse(err.Error())
				}
				r.ContentLength = int64(len(b))
				r.Body = io.NopCloser(bytes.NewReader(b))
			}
			return next(c)
		}
	}
}
