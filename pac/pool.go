// Copyright 2022-2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pac

import (
	"net"
	"net/url"
	"sync"
)

// ProxyResolverPool is a ProxyResolver safe for concurrent use.
type ProxyResolverPool struct {
	pool sync.Pool
}

func NewProxyResolverPool(cfg *ProxyResolverConfig, r *net.Resolver) (*ProxyResolverPool, error) {
	// Fail fast on a broken script, the pool constructor cannot return errors.
	first, err := NewProxyResolver(cfg, r)
	if err != nil {
		return nil, err
	}

	pool := &ProxyResolverPool{
		pool: sync.Pool{
			New: func() any {
				pr, err := NewProxyResolver(cfg, r)
				if err != nil {
					panic(err)
				}
				return pr
			},
		},
	}
	pool.pool.Put(first)

	return pool, nil
}

func (pool *ProxyResolverPool) FindProxyForURL(u *url.URL, hostname string) (Proxies, error) {
	pr := pool.pool.Get().(*ProxyResolver) //nolint:forcetypeassert // pool holds only resolvers
	defer pool.pool.Put(pr)
	return pr.FindProxyForURL(u, hostname)
}
