// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package dialvia

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// HTTPProxyDialer opens tunnels with CONNECT requests to an HTTP or HTTPS proxy.
type HTTPProxyDialer struct {
	dial      ContextDialerFunc
	proxyURL  *url.URL
	tlsConfig *tls.Config
}

func HTTPProxy(dial ContextDialerFunc, proxyURL *url.URL, tlsConfig *tls.Config) *HTTPProxyDialer {
	if dial == nil {
		panic("dial is required")
	}
	if proxyURL == nil {
		panic("proxy URL is required")
	}

	d := &HTTPProxyDialer{
		dial:     dial,
		proxyURL: proxyURL,
	}

	switch proxyURL.Scheme {
	case "http":
	case "https":
		if tlsConfig == nil {
			tlsConfig = new(tls.Config)
		} else {
			tlsConfig = tlsConfig.Clone()
		}
		tlsConfig.ServerName = proxyURL.Hostname()
		tlsConfig.NextProtos = []string{"http/1.1"}
		d.tlsConfig = tlsConfig
	default:
		panic("proxy URL scheme must be http or https")
	}

	return d
}

// DialContextR sends a CONNECT request for addr with the given extra headers.
// It returns the proxy response and the connection, the tunnel is established only if the status is 2xx.
// The caller is responsible for closing both, the response body is empty.
func (d *HTTPProxyDialer) DialContextR(ctx context.Context, network, addr string, header http.Header) (*http.Response, net.Conn, error) {
	if !isTCP(network) {
		return nil, nil, fmt.Errorf("unsupported network: %s", network)
	}

	conn, err := d.dial(ctx, "tcp", d.proxyURL.Host)
	if err != nil {
		return nil, nil, err
	}

	// Unblock reads and writes if ctx is done before the proxy answers.
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	res, conn, err := d.connect(ctx, conn, addr, header)
	if !stop() {
		if conn != nil {
			conn.Close()
		}
		return nil, nil, ctx.Err()
	}

	return res, conn, err
}

func (d *HTTPProxyDialer) connect(ctx context.Context, conn net.Conn, addr string, header http.Header) (*http.Response, net.Conn, error) {
	if d.tlsConfig != nil {
		tc := tls.Client(conn, d.tlsConfig)
		if err := tc.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("proxy TLS handshake: %w", err)
		}
		conn = tc
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Host: addr},
		Host:   addr,
		Header: header.Clone(),
	}
	if req.Header == nil {
		req.Header = http.Header{}
	}
	// Don't send the default Go HTTP client User-Agent.
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "")
	}

	bw := bufio.NewWriterSize(conn, 1024)
	if err := req.Write(bw); err != nil {
		conn.Close()
		return nil, nil, err
	}
	if err := bw.Flush(); err != nil {
		conn.Close()
		return nil, nil, err
	}

	br := bufio.NewReaderSize(conn, 1024)
	res, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	if br.Buffered() > 0 && res.StatusCode/100 == 2 {
		conn.Close()
		return nil, nil, fmt.Errorf("unexpected %d bytes after CONNECT response", br.Buffered())
	}

	return res, conn, nil
}
