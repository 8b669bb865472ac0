// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// MaxScriptSize limits the size of a PAC script read by ReadScript.
const MaxScriptSize = 1 << 20

// ParseSource parses a PAC script location.
// It accepts a file path, "-" for stdin, a file, http or https URL, or data:base64,<encoded script>.
func ParseSource(val string) (*url.URL, error) {
	if val == "" {
		return nil, fmt.Errorf("empty PAC script location")
	}
	if val == "-" {
		return &url.URL{Scheme: "file", Path: "-"}, nil
	}
	if strings.HasPrefix(val, "data:") {
		return &url.URL{Scheme: "data", Opaque: val[len("data:"):]}, nil
	}

	u, err := url.Parse(val)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "":
		return &url.URL{Scheme: "file", Path: val}, nil
	case "file", "http", "https":
		return u, nil
	default:
		// A single letter scheme is a Windows volume.
		if len(u.Scheme) == 1 {
			return &url.URL{Scheme: "file", Path: val}, nil
		}
		return nil, fmt.Errorf("unsupported scheme %q, supported schemes are: file, http, https and data", u.Scheme)
	}
}

// ReadScript reads a PAC script from a location returned by ParseSource.
// HTTP locations are fetched with rt, the response must be 200 OK.
func ReadScript(ctx context.Context, u *url.URL, rt http.RoundTripper) (string, error) {
	var (
		b   []byte
		err error
	)
	switch u.Scheme {
	case "data":
		b, err = readData(u)
	case "file":
		b, err = readFile(u)
	case "http", "https":
		b, err = readHTTP(ctx, u, rt)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return "", fmt.Errorf("read PAC script %s: %w", u.Redacted(), err)
	}
	if len(b) > MaxScriptSize {
		return "", fmt.Errorf("read PAC script %s: larger than %d bytes", u.Redacted(), MaxScriptSize)
	}

	return string(b), nil
}

func readData(u *url.URL) ([]byte, error) {
	v := u.Opaque
	if i := strings.IndexByte(v, ','); i != -1 {
		if v[:i] != "base64" {
			return nil, fmt.Errorf("invalid data URI, the only supported format is: data:base64,<encoded data>")
		}
		v = v[i+1:]
	}
	return base64.StdEncoding.DecodeString(v)
}

func readFile(u *url.URL) ([]byte, error) {
	if u.Host != "" && u.Host != "localhost" {
		return nil, fmt.Errorf("host %q is not allowed", u.Host)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, fmt.Errorf("query and fragment are not allowed")
	}
	if u.Path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	if u.Path == "-" {
		return readLimited(os.Stdin)
	}
	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f)
}

func readHTTP(ctx context.Context, u *url.URL, rt http.RoundTripper) ([]byte, error) {
	if rt == nil {
		rt = http.DefaultTransport
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return readLimited(resp.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, MaxScriptSize+1))
}
