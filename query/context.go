// Copyright (C) 2024 The a2s Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package query implements the per-invocation query engine: it opens a
// UDP endpoint per query, drives the request/reply (and, for PLAYER and
// RULES, the challenge/reply/reply) exchange against one target, and
// returns a decoded response plus the measured round trip.
package query

import (
	"log/slog"
	"sync"
	"time"

	"github.com/valvequery/a2s/protocol"
)

const defaultSplitSize = 0x05DC // 1500, per the wire documentation default.

// A Context holds per-invocation configuration: no process-wide globals
// are read by [Context]'s methods.
type Context struct {
	timeout        time.Duration
	engine         protocol.Engine
	appID          *int32
	splitSize      int
	useCompression bool
	logger         *slog.Logger

	pingWarnOnce sync.Once
}

// An Option configures a [Context] constructed with [New].
type Option func(*Context)

// WithTimeout sets the default per-query deadline. The zero value
// leaves the 10 second default in place.
func WithTimeout(d time.Duration) Option {
	return func(c *Context) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithEngine selects Source or GoldSrc wire framing.
func WithEngine(e protocol.Engine) Option {
	return func(c *Context) { c.engine = e }
}

// WithAppID pins responses to the quirks of a specific Steam app ID
// (the no-packet-size-field allow-list, and GoldSrc titles that use the
// Source INFO schema).
func WithAppID(id int32) Option {
	return func(c *Context) { c.appID = &id }
}

// WithSplitSize sets the request split size held by the Context. The
// request builders ([protocol.BuildInfoRequest] and friends) always
// emit a single packet and do not read this value, and it is not sent
// to the server.
func WithSplitSize(n int) Option {
	return func(c *Context) { c.splitSize = n }
}

// WithCompression sets the compression preference held by the Context.
// No request built by this package reads it or sends it to the server.
func WithCompression(v bool) Option {
	return func(c *Context) { c.useCompression = v }
}

// WithLogger sets the structured logger used for per-fragment debug
// logs and ResponseError warnings. The default discards all output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// New returns a Context with the given options applied over the
// defaults: 10 second timeout, Source engine, no app ID, 1500 byte
// split size, compression disabled.
func New(opts ...Option) *Context {
	c := &Context{
		timeout:   10 * time.Second,
		engine:    protocol.Source,
		splitSize: defaultSplitSize,
		logger:    slog.New(slog.NewTextHandler(discard{}, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
