// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package martianlog routes martian proxy logs to a structured logger.
package martianlog

import (
	"fmt"

	martianlog "github.com/google/martian/v3/log"
	"github.com/saucelabs/proxyauth/log"
)

// SetLogger replaces the global martian logger.
// Martian info messages are demoted to debug, they are per-connection noise.
func SetLogger(l log.StructuredLogger) {
	martianlog.SetLogger(printfLogger{l})
}

type printfLogger struct {
	log log.StructuredLogger
}

func (l printfLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l printfLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l printfLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}
