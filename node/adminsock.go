package node

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/server"
)

// adminEndpoint is the base URL of requests over the socket. The host is
// ignored by the dialer.
const adminEndpoint = "http://govote"

const adminShutdownTimeout = 5 * time.Second

// AdminServer serves the admin REST API on a unix domain socket. Only the
// user running the node can connect to it.
type AdminServer struct {
	e        *echo.Echo
	srv      *http.Server
	sockPath string
}

func NewAdminServer(sockPath string) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = server.HTTPErrorHandler
	return &AdminServer{
		e:        e,
		srv:      &http.Server{Handler: e, ErrorLog: e.StdLogger},
		sockPath: sockPath,
	}
}

func listenUnix(sockPath string) (net.Listener, error) {
	if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(sockPath), 0700); err != nil {
		return nil, err
	}
	l, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}
	if err := os.Chmod(sockPath, 0600); err != nil {
		_ = l.Close()
		return nil, err
	}
	return l, nil
}

// Start serves until Stop is called.
func (s *AdminServer) Start() error {
	l, err := listenUnix(s.sockPath)
	if err != nil {
		return errors.Wrapf(err, "FailToListen(sock=%s)", s.sockPath)
	}
	if err := s.srv.Serve(l); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *AdminServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), adminShutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// AdminClient calls the admin REST API of the node over its socket.
type AdminClient struct {
	hc       *http.Client
	sockPath string
}

// shortSocketPath returns the relative path if it's shorter. The length of
// a socket path is limited (104 bytes on BSD, 108 on Linux).
func shortSocketPath(sockPath string) string {
	wd, err := os.Getwd()
	if err != nil {
		return sockPath
	}
	rel, err := filepath.Rel(wd, sockPath)
	if err != nil || len(rel) > len(sockPath) {
		return sockPath
	}
	return rel
}

func NewAdminClient(sockPath string) *AdminClient {
	c := &AdminClient{sockPath: sockPath}
	var d net.Dialer
	c.hc = &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return d.DialContext(ctx, "unix", shortSocketPath(c.sockPath))
			},
		},
	}
	return c
}

// Do sends body as JSON and decodes the response into out. A response
// other than 2xx is returned as *RestError.
func (c *AdminClient) Do(method, path string, body, out interface{}) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, adminEndpoint+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return resp, newRestError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp, errors.Wrapf(err, "InvalidResponse(%s %s)", method, path)
	}
	return resp, nil
}

func (c *AdminClient) Get(path string, out interface{}) (*http.Response, error) {
	return c.Do(http.MethodGet, path, nil, out)
}

func (c *AdminClient) Post(path string, out interface{}) (*http.Response, error) {
	return c.Do(http.MethodPost, path, nil, out)
}

func (c *AdminClient) PostWithJson(path string, body, out interface{}) (*http.Response, error) {
	return c.Do(http.MethodPost, path, body, out)
}

func (c *AdminClient) Delete(path string, out interface{}) (*http.Response, error) {
	return c.Do(http.MethodDelete, path, nil, out)
}

// RestError is the failure reported by the admin API.
type RestError struct {
	Status  int
	Message string
}

func (e *RestError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Status, e.Message)
}

func newRestError(resp *http.Response) error {
	e := &RestError{Status: resp.StatusCode}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		e.Message = http.StatusText(resp.StatusCode)
		return e
	}
	var body struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil && body.Message != "" {
		e.Message = body.Message
	} else {
		e.Message = strings.TrimSpace(string(b))
	}
	return e
}
