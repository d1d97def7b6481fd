package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/icon-project/govote/common"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/service/event"
)

const DefaultMaxSession = 10

type WebSocketConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	NextReader() (messageType int, r io.Reader, err error)
	WriteJSON(v interface{}) error
	Close() error
}

type WebSocketUpgrader interface {
	Upgrade(ctx echo.Context) (WebSocketConn, error)
}

type gorillaUpgrader struct {
	websocket.Upgrader
}

func (u *gorillaUpgrader) Upgrade(ctx echo.Context) (WebSocketConn, error) {
	c, err := u.Upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// EventSource is the source of events streamed to sessions.
type EventSource interface {
	Subscribe(size int, types ...module.EventType) *event.Subscription
}

type wsSession struct {
	sync.Mutex
	id string
	c  WebSocketConn
}

func (wss *wsSession) WriteJSON(v interface{}) error {
	wss.Lock()
	defer wss.Unlock()
	if wss.c == nil {
		return io.ErrClosedPipe
	}
	return wss.c.WriteJSON(v)
}

func (wss *wsSession) close() {
	wss.Lock()
	defer wss.Unlock()
	if wss.c != nil {
		_ = wss.c.Close()
		wss.c = nil
	}
}

func (wss *wsSession) response(code int, msg string) error {
	return wss.WriteJSON(&WSResponse{
		Code:    code,
		Message: msg,
		Session: wss.id,
	})
}

type WSResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Session string `json:"session,omitempty"`
}

// EventRequest selects events of a session. Empty fields match any.
type EventRequest struct {
	Types      []module.EventType `json:"types,omitempty"`
	Signer     *common.Address    `json:"signer,omitempty"`
	ProposalID *common.HexUint64  `json:"proposalId,omitempty"`
}

func (er *EventRequest) match(e *module.Event) bool {
	if er.Signer != nil && (e.Signer == nil || *e.Signer != *er.Signer) {
		return false
	}
	if er.ProposalID != nil && (e.ProposalID == nil || *e.ProposalID != er.ProposalID.Value) {
		return false
	}
	return true
}

type wsSessionManager struct {
	sync.Mutex
	logger     log.Logger
	source     EventSource
	maxSession int
	sessions   []*wsSession
	upgrader   WebSocketUpgrader
}

func newWSSessionManager(logger log.Logger, source EventSource, maxSession int) *wsSessionManager {
	return newWSSessionManagerWithUpgrader(logger, source, maxSession, &gorillaUpgrader{})
}

func newWSSessionManagerWithUpgrader(logger log.Logger, source EventSource, maxSession int, upgrader WebSocketUpgrader) *wsSessionManager {
	if maxSession <= 0 {
		maxSession = DefaultMaxSession
	}
	return &wsSessionManager{
		logger:     logger,
		source:     source,
		maxSession: maxSession,
		upgrader:   upgrader,
	}
}

func (wm *wsSessionManager) NewSession(c WebSocketConn) *wsSession {
	wm.Lock()
	defer wm.Unlock()

	if len(wm.sessions) >= wm.maxSession {
		return nil
	}
	wss := &wsSession{
		id: uuid.Must(uuid.NewV4()).String(),
		c:  c,
	}
	wm.sessions = append(wm.sessions, wss)
	return wss
}

func (wm *wsSessionManager) stopSessionAt(i int) {
	wm.sessions[i].close()
	last := len(wm.sessions) - 1
	wm.sessions[i] = wm.sessions[last]
	wm.sessions[last] = nil
	wm.sessions = wm.sessions[:last]
}

func (wm *wsSessionManager) StopSession(wss *wsSession) {
	wm.Lock()
	defer wm.Unlock()

	for i := 0; i < len(wm.sessions); i++ {
		if wss == wm.sessions[i] {
			wm.stopSessionAt(i)
			break
		}
	}
}

func (wm *wsSessionManager) StopAllSessions() {
	wm.Lock()
	defer wm.Unlock()

	for _, wss := range wm.sessions {
		wss.close()
	}
	wm.sessions = nil
}

func (wm *wsSessionManager) Size() int {
	wm.Lock()
	defer wm.Unlock()
	return len(wm.sessions)
}

// initSession upgrades the connection and reads the first message of the
// session as the request.
func (wm *wsSessionManager) initSession(ctx echo.Context, req interface{}) (*wsSession, WebSocketConn, error) {
	c, err := wm.upgrader.Upgrade(ctx)
	if err != nil {
		return nil, nil, err
	}

	wss := wm.NewSession(c)
	if wss == nil {
		_ = c.WriteJSON(&WSResponse{
			Code:    int(jsonrpc.ErrorCodeServer),
			Message: "too many stream sessions",
		})
		_ = c.Close()
		return nil, nil, echo.NewHTTPError(http.StatusTooManyRequests, "too many stream sessions")
	}

	_, msg, err := c.ReadMessage()
	if err != nil {
		wm.StopSession(wss)
		return nil, nil, err
	}
	if err := json.Unmarshal(msg, req); err != nil {
		_ = wss.response(int(jsonrpc.ErrorCodeParse), err.Error())
		wm.StopSession(wss)
		return nil, nil, err
	}
	return wss, c, nil
}

// RunEventSession streams events matching the request until the client
// leaves or the source is closed.
func (wm *wsSessionManager) RunEventSession(ctx echo.Context) error {
	var er EventRequest
	wss, c, err := wm.initSession(ctx, &er)
	if err != nil {
		return nil
	}
	defer wm.StopSession(wss)

	sub := wm.source.Subscribe(event.DefaultBufferSize, er.Types...)
	defer sub.Close()

	if err := wss.response(0, ""); err != nil {
		return nil
	}
	wm.logger.Debugf("Event session started id=%s", wss.id)

	ech := make(chan error, 1)
	go readLoop(c, ech)

loop:
	for {
		select {
		case err = <-ech:
			break loop
		case e, ok := <-sub.C():
			if !ok {
				break loop
			}
			if !er.match(e) {
				continue loop
			}
			if err = wss.WriteJSON(e); err != nil {
				wm.logger.Infof("fail to write json Event err:%+v", err)
				break loop
			}
		}
	}
	if dropped := sub.Dropped(); dropped > 0 {
		wm.logger.Warnf("Event session id=%s dropped=%d", wss.id, dropped)
	}
	wm.logger.Debugf("Event session finished id=%s err=%v", wss.id, err)
	return nil
}

func readLoop(c WebSocketConn, ech chan<- error) {
	for {
		if _, _, err := c.NextReader(); err != nil {
			ech <- err
			break
		}
	}
}
