// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson"
	"github.com/saucelabs/proxyauth/log"
)

var errConnClosed = errors.New("CDP connection closed")

type eventHandler func(c *conn, msg *cdproto.Message)

// conn is a DevTools protocol connection.
// Responses are matched to commands by ID, events are handled in their own goroutines.
type conn struct {
	ws      *websocket.Conn
	log     log.StructuredLogger
	handler eventHandler

	msgID atomic.Int64
	wmu   sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan *cdproto.Message
	err     error

	done     chan struct{}
	handlers sync.WaitGroup
}

func dial(ctx context.Context, wsURL string, h eventHandler, log log.StructuredLogger) (*conn, error) {
	wd := &websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1 << 20,
		WriteBufferSize:  1 << 20,
	}
	ws, _, err := wd.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", wsURL, err)
	}

	c := &conn{
		ws:      ws,
		log:     log,
		handler: h,
		pending: make(map[int64]chan *cdproto.Message),
		done:    make(chan struct{}),
	}
	go c.readLoop()

	return c, nil
}

func (c *conn) readLoop() {
	defer close(c.done)

	for {
		_, buf, err := c.ws.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}

		msg := new(cdproto.Message)
		if err := easyjson.Unmarshal(buf, msg); err != nil {
			c.log.Warn("invalid CDP message", "error", err)
			continue
		}

		if msg.ID != 0 {
			c.mu.Lock()
			ch, ok := c.pending[msg.ID]
			delete(c.pending, msg.ID)
			c.mu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		if c.handler != nil {
			c.handlers.Add(1)
			go func() {
				defer c.handlers.Done()
				c.handler(c, msg)
			}()
		}
	}
}

// execute sends a command to the session and waits for the response.
func (c *conn) execute(ctx context.Context, sessionID target.SessionID, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	var (
		buf []byte
		err error
	)
	if params != nil {
		if buf, err = easyjson.Marshal(params); err != nil {
			return fmt.Errorf("%s: marshal params: %w", method, err)
		}
	}

	id := c.msgID.Add(1)
	msg := &cdproto.Message{
		ID:        id,
		SessionID: sessionID,
		Method:    cdproto.MethodType(method),
		Params:    buf,
	}
	b, err := easyjson.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: marshal message: %w", method, err)
	}

	ch := make(chan *cdproto.Message, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.wmu.Lock()
	err = c.ws.WriteMessage(websocket.TextMessage, b)
	c.wmu.Unlock()
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", method, ctx.Err())
	case <-c.done:
		return fmt.Errorf("%s: %w", method, c.closeErr())
	case m := <-ch:
		if m.Error != nil {
			return fmt.Errorf("%s: %w", method, m.Error)
		}
		if res != nil && len(m.Result) > 0 {
			if err := easyjson.Unmarshal(m.Result, res); err != nil {
				return fmt.Errorf("%s: unmarshal result: %w", method, err)
			}
		}
		return nil
	}
}

func (c *conn) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil || websocket.IsCloseError(c.err, websocket.CloseNormalClosure) {
		return errConnClosed
	}
	return fmt.Errorf("%w: %v", errConnClosed, c.err)
}

// session returns an executor bound to the session, the empty session is the browser target.
func (c *conn) session(id target.SessionID) cdp.Executor {
	return sessionExecutor{c: c, id: id}
}

// close closes the websocket and waits for the running event handlers.
func (c *conn) close() error {
	c.wmu.Lock()
	c.ws.WriteControl(websocket.CloseMessage, //nolint:errcheck // best effort
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	c.wmu.Unlock()

	err := c.ws.Close()
	<-c.done
	c.handlers.Wait()
	return err
}

type sessionExecutor struct {
	c  *conn
	id target.SessionID
}

func (s sessionExecutor) Execute(ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler) error {
	return s.c.execute(ctx, s.id, method, params, res)
}
