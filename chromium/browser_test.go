// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package chromium

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/saucelabs/proxyauth"
	"github.com/saucelabs/proxyauth/log"
	"go.uber.org/goleak"
)

var testCred = proxyauth.Credential{Username: "brd-customer-test-zone-test", Password: "secret"}

const authRequiredParams = `{
	"requestId": "interception-1",
	"request": {"url": "https://www.walmart.com/ip/1", "method": "GET"},
	"frameId": "F1",
	"resourceType": "Document",
	"authChallenge": {"source": "Proxy", "origin": "https://brd.superproxy.io:33335", "scheme": "Basic", "realm": "superproxy"}
}`

func attach(t *testing.T, b *Browser, f *fakeDevTools) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Attach(ctx, f.URL())
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("attach: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("attach did not return")
		}
	})

	p := f.next("Fetch.enable")
	if p["handleAuthRequests"] != true {
		t.Fatalf("Fetch.enable params: %v", p)
	}
}

func TestBrowserAnswersProxyAuth(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	f := newFakeDevTools(t)
	b, err := New(DefaultConfig(), log.NopLogger)
	if err != nil {
		t.Fatal(err)
	}
	if err := proxyauth.Setup(context.Background(), b, b, proxyauth.VariantA(testCred), log.NopLogger); err != nil {
		t.Fatal(err)
	}
	attach(t, b, f)

	f.event("Fetch.requestPaused", `{"requestId":"interception-0","request":{"url":"https://www.walmart.com/","method":"GET"},"frameId":"F1","resourceType":"Document"}`)
	if diff := cmp.Diff(map[string]any{"requestId": "interception-0"}, f.next("Fetch.continueRequest")); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	f.event("Fetch.authRequired", authRequiredParams)
	want := map[string]any{
		"requestId": "interception-1",
		"authChallengeResponse": map[string]any{
			"response": "ProvideCredentials",
			"username": testCred.Username,
			"password": testCred.Password,
		},
	}
	if diff := cmp.Diff(want, f.next("Fetch.continueWithAuth")); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}

	// The proxy rejected the credentials.
	f.event("Fetch.authRequired", authRequiredParams)
	want = map[string]any{
		"requestId":             "interception-1",
		"authChallengeResponse": map[string]any{"response": "CancelAuth"},
	}
	if diff := cmp.Diff(want, f.next("Fetch.continueWithAuth")); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestBrowserWithoutListenerUsesDefault(t *testing.T) {
	f := newFakeDevTools(t)
	b, err := New(DefaultConfig(), log.NopLogger)
	if err != nil {
		t.Fatal(err)
	}
	attach(t, b, f)

	f.event("Fetch.authRequired", authRequiredParams)
	want := map[string]any{
		"requestId":             "interception-1",
		"authChallengeResponse": map[string]any{"response": "Default"},
	}
	if diff := cmp.Diff(want, f.next("Fetch.continueWithAuth")); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestBrowserIncognitoContext(t *testing.T) {
	f := newFakeDevTools(t)
	b, err := New(DefaultConfig(), log.NopLogger)
	if err != nil {
		t.Fatal(err)
	}
	attach(t, b, f)

	p := proxyauth.VariantB(testCred, "us")
	details := proxyauth.SettingsDetails{Value: p.Config, Scope: proxyauth.IncognitoPersistentScope}
	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Set(context.Background(), details)
	}()

	// The empty bypass list is omitted.
	want := map[string]any{"proxyServer": "http://brd.superproxy.io:33335"}
	if diff := cmp.Diff(want, f.next("Target.createBrowserContext")); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	want = map[string]any{"url": "about:blank", "browserContextId": "CTX1"}
	if diff := cmp.Diff(want, f.next("Target.createTarget")); diff != "" {
		t.Fatalf("unexpected result (-want +got):\n%s", diff)
	}
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
	if got := b.BrowserContexts(); len(got) != 1 || got[0] != "CTX1" {
		t.Fatalf("browser contexts: %v", got)
	}

	// Regular settings need a restart.
	details.Scope = proxyauth.RegularScope
	if err := b.Set(context.Background(), details); !errors.Is(err, proxyauth.ErrUnsupportedScope) {
		t.Fatalf("expected ErrUnsupportedScope, got %v", err)
	}
}

func TestProxyFlags(t *testing.T) {
	tests := []struct {
		name string
		cfg  *proxyauth.ProxyConfig
		want []string
	}{
		{
			name: "variant a",
			cfg:  proxyauth.VariantA(testCred).Config,
			want: []string{"--proxy-server=https://brd.superproxy.io:33335", "--proxy-bypass-list=localhost"},
		},
		{
			name: "variant b",
			cfg:  proxyauth.VariantB(testCred, "us").Config,
			want: []string{"--proxy-server=http://brd.superproxy.io:33335", "--proxy-bypass-list="},
		},
		{
			name: "bypass list",
			cfg:  proxyauth.NewFixedServersConfig(proxyauth.SOCKS5Scheme, "h", 1080, "*.local", "10.0.0.0/8"),
			want: []string{"--proxy-server=socks5://h:1080", "--proxy-bypass-list=*.local;10.0.0.0/8"},
		},
		{
			name: "direct",
			cfg:  &proxyauth.ProxyConfig{Mode: proxyauth.DirectMode},
			want: []string{"--no-proxy-server"},
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			got, err := proxyFlags(tc.cfg)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := proxyFlags(&proxyauth.ProxyConfig{Mode: proxyauth.PACScriptMode}); err == nil {
		t.Error("expected error for pac_script mode")
	}
}

func TestChallenger(t *testing.T) {
	tests := []struct {
		origin string
		want   proxyauth.Challenger
	}{
		{"https://brd.superproxy.io:33335", proxyauth.Challenger{Host: "brd.superproxy.io", Port: 33335}},
		{"http://proxy", proxyauth.Challenger{Host: "proxy", Port: 80}},
		{"https://proxy", proxyauth.Challenger{Host: "proxy", Port: 443}},
		{"proxy", proxyauth.Challenger{Host: "proxy"}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.want, challenger(tc.origin)); diff != "" {
			t.Errorf("%s: unexpected result (-want +got):\n%s", tc.origin, diff)
		}
	}
}

func TestReadDevToolsURL(t *testing.T) {
	dir := t.TempDir()
	fpath := filepath.Join(dir, devToolsActivePort)

	if _, err := readDevToolsURL(fpath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist, got %v", err)
	}
	if err := os.WriteFile(fpath, []byte("9222\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readDevToolsURL(fpath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial file: expected not exist, got %v", err)
	}
	if err := os.WriteFile(fpath, []byte("9222\n/devtools/browser/abc\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := readDevToolsURL(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ws://127.0.0.1:9222/devtools/browser/abc" {
		t.Fatalf("got %q", got)
	}
}

const fakeBrowser = `#!/bin/sh
for a in "$@"; do
	case "$a" in
	--user-data-dir=*) d="${a#--user-data-dir=}" ;;
	esac
done
echo "$@" > "$d/args"
printf '9222\n/devtools/browser/fake\n' > "$d/DevToolsActivePort"
exec sleep 30
`

func TestLaunch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a shell")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "chromium")
	if err := os.WriteFile(exe, []byte(fakeBrowser), 0o700); err != nil { //nolint:gosec // test executable
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ExecPath = exe
	cfg.UserDataDir = filepath.Join(dir, "profile")
	cfg.Headless = true
	if err := os.Mkdir(cfg.UserDataDir, 0o700); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	flags, err := proxyFlags(proxyauth.VariantA(testCred).Config)
	if err != nil {
		t.Fatal(err)
	}
	p, err := launch(ctx, cfg, flags, log.NopLogger)
	if err != nil {
		cancel()
		t.Fatal(err)
	}
	if p.wsURL != "ws://127.0.0.1:9222/devtools/browser/fake" {
		t.Errorf("got %q", p.wsURL)
	}

	cancel()
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("process was not killed")
	}

	args, err := os.ReadFile(filepath.Join(cfg.UserDataDir, "args"))
	if err != nil {
		t.Fatal(err)
	}
	want := "--remote-debugging-port=0 --user-data-dir=" + cfg.UserDataDir +
		" --no-first-run --no-default-browser-check" +
		" --proxy-server=https://brd.superproxy.io:33335 --proxy-bypass-list=localhost" +
		" --headless=new about:blank\n"
	if diff := cmp.Diff(want, string(args)); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestLaunchExitedEarly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a shell")
	}

	dir := t.TempDir()
	exe := filepath.Join(dir, "chromium")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\nexit 3\n"), 0o700); err != nil { //nolint:gosec // test executable
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.ExecPath = exe

	if _, err := launch(context.Background(), cfg, nil, log.NopLogger); err == nil {
		t.Fatal("expected error")
	}
}
