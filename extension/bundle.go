// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package extension

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/saucelabs/proxyauth/log"
	"go.uber.org/multierr"
)

// Bundle holds the extension files.
// The background script carries the credentials in clear text, files are written readable by the owner only.
type Bundle struct {
	Manifest   []byte
	Background []byte
}

type bundleFile struct {
	name string
	data *[]byte
}

func (b *Bundle) files() []bundleFile {
	return []bundleFile{
		{ManifestFile, &b.Manifest},
		{BackgroundFile, &b.Background},
	}
}

// WriteDir writes the unpacked extension to dir, creating it if needed.
func (b *Bundle) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, log.DefaultDirMode); err != nil {
		return fmt.Errorf("create extension dir: %w", err)
	}
	for _, f := range b.files() {
		if err := os.WriteFile(filepath.Join(dir, f.name), *f.data, log.DefaultFileMode); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// WriteZip writes the extension as a zip archive that can be packed or loaded by the browser.
func (b *Bundle) WriteZip(w io.Writer) (err error) {
	zw := zip.NewWriter(w)
	defer func() {
		err = multierr.Append(err, zw.Close())
	}()

	for _, f := range b.files() {
		fw, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(*f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return nil
}

// WriteZipFile writes the zip archive to path.
func (b *Bundle) WriteZipFile(path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, log.DefaultFileMode)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return b.WriteZip(f)
}

// ReadDir reads an unpacked extension.
func ReadDir(dir string) (*Bundle, error) {
	m, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	bg, err := os.ReadFile(filepath.Join(dir, BackgroundFile))
	if err != nil {
		return nil, err
	}
	return &Bundle{Manifest: m, Background: bg}, nil
}

// ReadZip reads an extension zip archive.
func ReadZip(path string) (*Bundle, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	b := new(Bundle)
	for _, f := range b.files() {
		data, err := readZipFile(&zr.Reader, f.name)
		if err != nil {
			return nil, err
		}
		*f.data = data
	}
	return b, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Read reads an extension from a directory or a zip archive.
func Read(path string) (*Bundle, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return ReadDir(path)
	}
	return ReadZip(path)
}
