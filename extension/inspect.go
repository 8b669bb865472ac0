// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package extension

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/dop251/goja"
	"github.com/saucelabs/proxyauth"
)

// InspectedListener is an auth listener registered by the background script.
type InspectedListener struct {
	Filter        proxyauth.RequestFilter   `json:"filter"`
	ExtraInfoSpec []proxyauth.ExtraInfoSpec `json:"extraInfoSpec"`
	Response      proxyauth.AuthResponse    `json:"response"`
}

// Inspection is what the background script submitted to the browser.
type Inspection struct {
	Manifest  *Manifest                   `json:"manifest"`
	Settings  []proxyauth.SettingsDetails `json:"settings"`
	Listeners []InspectedListener         `json:"listeners"`
	Console   []string                    `json:"console,omitempty"`
}

// Inspect runs the background script against a stub of the chrome API.
// Every registered listener is called with ch, asynchronous listeners are expected to call back before returning.
func Inspect(b *Bundle, ch proxyauth.AuthChallenge) (*Inspection, error) {
	var m Manifest
	if err := json.Unmarshal(b.Manifest, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	if !slices.Contains(m.Background.Scripts, BackgroundFile) && m.Background.ServiceWorker != BackgroundFile {
		return nil, fmt.Errorf("%s does not load %s", ManifestFile, BackgroundFile)
	}

	s := newChromeStub()
	if err := s.run(string(b.Background)); err != nil {
		return nil, fmt.Errorf("run %s: %w", BackgroundFile, err)
	}

	in := &Inspection{
		Manifest: &m,
		Settings: s.settings,
		Console:  s.console,
	}
	for i, l := range s.listeners {
		res, err := s.call(l, ch)
		if err != nil {
			return nil, fmt.Errorf("listener %d: %w", i, err)
		}
		in.Listeners = append(in.Listeners, InspectedListener{
			Filter:        l.filter,
			ExtraInfoSpec: l.spec,
			Response:      res,
		})
	}

	return in, nil
}

type stubListener struct {
	fn     goja.Callable
	filter proxyauth.RequestFilter
	spec   []proxyauth.ExtraInfoSpec
}

type chromeStub struct {
	vm        *goja.Runtime
	settings  []proxyauth.SettingsDetails
	listeners []stubListener
	console   []string
	err       error
}

func newChromeStub() *chromeStub {
	return &chromeStub{
		vm: goja.New(),
	}
}

func (s *chromeStub) run(script string) error {
	vm := s.vm

	settings := vm.NewObject()
	must(settings.Set("set", s.settingsSet))
	proxy := vm.NewObject()
	must(proxy.Set("settings", settings))

	onAuthRequired := vm.NewObject()
	must(onAuthRequired.Set("addListener", s.addListener))
	webRequest := vm.NewObject()
	must(webRequest.Set("onAuthRequired", onAuthRequired))

	chrome := vm.NewObject()
	must(chrome.Set("proxy", proxy))
	must(chrome.Set("webRequest", webRequest))
	must(chrome.Set("runtime", vm.NewObject()))
	must(vm.Set("chrome", chrome))

	console := vm.NewObject()
	for _, name := range []string{"log", "info", "warn", "error"} {
		must(console.Set(name, s.consoleFn(name)))
	}
	must(vm.Set("console", console))

	if _, err := vm.RunString(script); err != nil {
		return err
	}
	return s.err
}

func (s *chromeStub) settingsSet(call goja.FunctionCall) goja.Value {
	var d proxyauth.SettingsDetails
	if err := decode(call.Argument(0), &d); err != nil {
		s.setErr(fmt.Errorf("chrome.proxy.settings.set: %w", err))
		return goja.Undefined()
	}
	s.settings = append(s.settings, d)

	if cb, ok := goja.AssertFunction(call.Argument(1)); ok {
		if _, err := cb(goja.Undefined()); err != nil {
			s.setErr(err)
		}
	}
	return goja.Undefined()
}

func (s *chromeStub) addListener(call goja.FunctionCall) goja.Value {
	fn, ok := goja.AssertFunction(call.Argument(0))
	if !ok {
		s.setErr(errors.New("chrome.webRequest.onAuthRequired.addListener: listener is not a function"))
		return goja.Undefined()
	}

	l := stubListener{fn: fn}
	if err := decode(call.Argument(1), &l.filter); err != nil {
		s.setErr(fmt.Errorf("chrome.webRequest.onAuthRequired.addListener: filter: %w", err))
	}
	if err := decode(call.Argument(2), &l.spec); err != nil {
		s.setErr(fmt.Errorf("chrome.webRequest.onAuthRequired.addListener: extraInfoSpec: %w", err))
	}
	s.listeners = append(s.listeners, l)

	return goja.Undefined()
}

func (s *chromeStub) consoleFn(level string) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		msg := level + ":"
		for _, a := range call.Arguments {
			msg += " " + a.String()
		}
		s.console = append(s.console, msg)
		return goja.Undefined()
	}
}

func (s *chromeStub) call(l stubListener, ch proxyauth.AuthChallenge) (proxyauth.AuthResponse, error) {
	var details any
	b, err := json.Marshal(ch)
	if err != nil {
		return proxyauth.AuthResponse{}, err
	}
	if err := json.Unmarshal(b, &details); err != nil {
		return proxyauth.AuthResponse{}, err
	}

	var v goja.Value
	if slices.Contains(l.spec, proxyauth.AsyncBlocking) {
		called := false
		callback := func(call goja.FunctionCall) goja.Value {
			v, called = call.Argument(0), true
			return goja.Undefined()
		}
		if _, err := l.fn(goja.Undefined(), s.vm.ToValue(details), s.vm.ToValue(callback)); err != nil {
			return proxyauth.AuthResponse{}, err
		}
		if !called {
			return proxyauth.AuthResponse{}, errors.New("asyncBlocking listener did not call back")
		}
	} else {
		v, err = l.fn(goja.Undefined(), s.vm.ToValue(details))
		if err != nil {
			return proxyauth.AuthResponse{}, err
		}
	}

	var res proxyauth.AuthResponse
	if err := decode(v, &res); err != nil {
		return proxyauth.AuthResponse{}, fmt.Errorf("response: %w", err)
	}
	return res, nil
}

func (s *chromeStub) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

// decode converts a JavaScript value to v through its JSON representation.
// Undefined and null leave v unchanged.
func decode(val goja.Value, v any) error {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	b, err := json.Marshal(val.Export())
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
