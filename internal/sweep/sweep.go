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

// Package sweep fans queries out across a set of targets under a
// concurrency limit, the "bulk sweep driver" the core query engine
// leaves as an external collaborator.
package sweep

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// A Target is one (host, port) pair to query.
type Target struct {
	Host string
	Port uint16
}

// A Result pairs a Target with whatever its query func returned.
type Result struct {
	Target Target
	Value  any
	Err    error
}

// QueryFunc performs one query against a target and returns an
// arbitrary decoded value.
type QueryFunc func(ctx context.Context, t Target) (any, error)

// Driver fans QueryFunc out across Targets, holding at most Concurrency
// queries in flight at once and pacing new sends with a rate limiter so
// a large sweep doesn't burst the local network stack.
type Driver struct {
	Concurrency int
	// RequestsPerSecond paces semaphore acquisition; zero disables pacing.
	RequestsPerSecond float64
	Logger            *slog.Logger
}

// Run queries every target and returns one Result per target, in
// completion order. Targets in excess of Concurrency simply wait their
// turn; Run does not drop or sample any target.
func (d *Driver) Run(ctx context.Context, targets []Target, query QueryFunc) []Result {
	n := d.Concurrency
	if n <= 0 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))
	var limiter *rate.Limiter
	if d.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(d.RequestsPerSecond), 1)
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}

	results := make(chan Result, len(targets))
	var wg sync.WaitGroup
	for _, t := range targets {
		t := t
		if err := sem.Acquire(ctx, 1); err != nil {
			results <- Result{Target: t, Err: err}
			continue
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				sem.Release(1)
				results <- Result{Target: t, Err: err}
				continue
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			logger.Debug("querying target", "host", t.Host, "port", t.Port)
			v, err := query(ctx, t)
			results <- Result{Target: t, Value: v, Err: err}
		}()
	}
	wg.Wait()
	close(results)

	out := make([]Result, 0, len(targets))
	for r := range results {
		out = append(out, r)
	}
	return out
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
