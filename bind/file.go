// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package bind

import (
	"os"

	"github.com/spf13/pflag"
)

// fileValue opens the file when the flag is set.
// Setting it again closes the previously opened file, so a config file value replaced by a flag does not leak.
type fileValue struct {
	f    **os.File
	open func(path string) (*os.File, error)
}

var _ pflag.Value = (*fileValue)(nil)

func NewFileFlag(f **os.File, open func(path string) (*os.File, error)) pflag.Value {
	if f == nil {
		panic("nil pointer")
	}
	return &fileValue{f: f, open: open}
}

func (v *fileValue) Set(path string) error {
	nf, err := v.open(path)
	if err != nil {
		return err
	}
	if old := *v.f; old != nil {
		old.Close()
	}
	*v.f = nf
	return nil
}

func (v *fileValue) String() string {
	if *v.f == nil {
		return ""
	}
	return (*v.f).Name()
}

func (v *fileValue) Type() string {
	return "path"
}
