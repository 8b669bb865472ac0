// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson"
)

// fakeDevTools is a DevTools endpoint that acknowledges every command.
type fakeDevTools struct {
	t       *testing.T
	srv     *httptest.Server
	results map[string]string

	mu       sync.Mutex
	ws       *websocket.Conn
	commands chan *cdproto.Message
}

func newFakeDevTools(t *testing.T) *fakeDevTools {
	t.Helper()

	f := &fakeDevTools{
		t: t,
		results: map[string]string{
			"Target.createBrowserContext": `{"browserContextId":"CTX1"}`,
			"Target.createTarget":         `{"targetId":"T1"}`,
		},
		commands: make(chan *cdproto.Message, 100),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)

	return f
}

func (f *fakeDevTools) URL() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/devtools/browser/test"
}

func (f *fakeDevTools) serve(w http.ResponseWriter, r *http.Request) {
	var u websocket.Upgrader
	ws, err := u.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	defer ws.Close()

	f.mu.Lock()
	f.ws = ws
	f.mu.Unlock()

	for {
		_, b, err := ws.ReadMessage()
		if err != nil {
			return
		}
		msg := new(cdproto.Message)
		if err := easyjson.Unmarshal(b, msg); err != nil {
			f.t.Errorf("invalid message %s: %v", b, err)
			return
		}
		f.commands <- msg

		res := f.results[string(msg.Method)]
		if res == "" {
			res = "{}"
		}
		f.write(`{"id":` + jsonInt(msg.ID) + `,"result":` + res + `}`)
	}
}

func (f *fakeDevTools) write(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ws.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
		f.t.Errorf("write: %v", err)
	}
}

// event sends a DevTools event with the given params.
func (f *fakeDevTools) event(method, params string) {
	f.write(`{"method":"` + method + `","params":` + params + `}`)
}

// next returns the next command or fails the test.
func (f *fakeDevTools) next(method string) map[string]any {
	f.t.Helper()

	select {
	case msg := <-f.commands:
		if string(msg.Method) != method {
			f.t.Fatalf("got command %s, want %s", msg.Method, method)
		}
		var params map[string]any
		if len(msg.Params) > 0 {
			if err := json.Unmarshal(msg.Params, &params); err != nil {
				f.t.Fatalf("params of %s: %v", method, err)
			}
		}
		return params
	case <-time.After(5 * time.Second):
		f.t.Fatalf("timeout waiting for %s", method)
		return nil
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
