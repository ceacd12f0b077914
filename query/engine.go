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

package query

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/valvequery/a2s/protocol"
)

// ErrTimeout is returned when a query's deadline elapses before the
// response finished assembling. It is never wrapped in a
// [protocol.ResponseError].
var ErrTimeout = stderrors.New("a2s: query timeout")

// maxDatagram is the receive buffer size; servers are expected to keep
// fragments under 1400 bytes but the docs recommend tolerating more.
const maxDatagram = 4096

// InfoResult carries the decoded A2S_INFO reply under whichever of the
// two wire schemas the server actually used.
type InfoResult struct {
	Source  *protocol.InfoResponse
	GoldSrc *protocol.InfoGoldSrcResponse
}

// QueryInfo sends an A2S_INFO request and returns the decoded reply and
// measured round trip.
func (c *Context) QueryInfo(ctx context.Context, host string, port uint16, timeout time.Duration) (*InfoResult, time.Duration, error) {
	header := protocol.InfoHeaderFor(c.engine, c.appID)
	payload, rtt, err := c.runSimple(ctx, host, port, timeout, protocol.BuildInfoRequest(), header)
	if err != nil {
		return nil, rtt, err
	}
	res := &InfoResult{}
	if header == protocol.HeaderInfoResponse {
		res.Source, err = protocol.DecodeInfo(payload)
	} else {
		res.GoldSrc, err = protocol.DecodeInfoGoldSrc(payload)
	}
	return res, rtt, err
}

// QueryPlayers sends an A2S_PLAYER request, performing the challenge
// exchange if the server requires one, and returns the decoded reply
// and measured round trip (measured from the first send).
func (c *Context) QueryPlayers(ctx context.Context, host string, port uint16, timeout time.Duration) (*protocol.PlayersResponse, time.Duration, error) {
	payload, rtt, err := c.runChallenged(ctx, host, port, timeout, protocol.BuildPlayerRequest, protocol.HeaderPlayersResponse)
	if err != nil {
		return nil, rtt, err
	}
	resp, err := protocol.DecodePlayers(payload)
	return resp, rtt, err
}

// QueryRules sends an A2S_RULES request, performing the challenge
// exchange if the server requires one, and returns the decoded reply
// and measured round trip (measured from the first send).
func (c *Context) QueryRules(ctx context.Context, host string, port uint16, timeout time.Duration) (*protocol.RulesResponse, time.Duration, error) {
	payload, rtt, err := c.runChallenged(ctx, host, port, timeout, protocol.BuildRulesRequest, protocol.HeaderRulesResponse)
	if err != nil {
		return nil, rtt, err
	}
	resp, err := protocol.DecodeRules(payload)
	return resp, rtt, err
}

// QueryGetChallenge sends an A2S_SERVERQUERY_GETCHALLENGE request and
// returns the challenge number.
func (c *Context) QueryGetChallenge(ctx context.Context, host string, port uint16, timeout time.Duration) (*protocol.ChallengeResponse, time.Duration, error) {
	payload, rtt, err := c.runSimple(ctx, host, port, timeout, protocol.BuildGetChallengeRequest(), protocol.HeaderChallengeResponse)
	if err != nil {
		return nil, rtt, err
	}
	resp, err := protocol.DecodeChallenge(payload)
	return resp, rtt, err
}

// QueryPing sends a deprecated A2A_PING request. A2A_PING is no longer
// supported by Counter-Strike: Source or Team Fortress 2 servers; the
// first call from a Context logs a one-shot deprecation warning rather
// than refusing to send it.
func (c *Context) QueryPing(ctx context.Context, host string, port uint16, timeout time.Duration) (*protocol.PingResponse, time.Duration, error) {
	c.pingWarnOnce.Do(func() {
		c.logger.Warn("A2A_PING is deprecated and unsupported on Counter-Strike: Source and Team Fortress 2 servers")
	})
	payload, rtt, err := c.runSimple(ctx, host, port, timeout, protocol.BuildPingRequest(), protocol.HeaderPingResponse)
	if err != nil {
		return nil, rtt, err
	}
	resp, err := protocol.DecodePing(payload)
	return resp, rtt, err
}

// runSimple drives a single request/reply exchange with no challenge
// hop: INFO, PING, GET_CHALLENGE.
func (c *Context) runSimple(ctx context.Context, host string, port uint16, timeout time.Duration, req []byte, header byte) ([]byte, time.Duration, error) {
	conn, t0, cancel, err := c.open(ctx, host, port, timeout)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()
	defer conn.Close()

	asm := protocol.NewAssembler(c.engine, header, c.appID, c.logger)
	payload, err := c.exchange(ctx, conn, req, asm)
	return payload, time.Since(t0), err
}

// runChallenged drives the PLAYER/RULES challenge/reply/reply exchange
// under one overall deadline. The two states are the two sequential
// exchange calls, with no separate state variable: the first awaits the
// challenge (or a direct reply), the second awaits the response after
// the real challenge number has been resent.
func (c *Context) runChallenged(ctx context.Context, host string, port uint16, timeout time.Duration, build func(int32) []byte, finalHeader byte) ([]byte, time.Duration, error) {
	conn, t0, cancel, err := c.open(ctx, host, port, timeout)
	if err != nil {
		return nil, 0, err
	}
	defer cancel()
	defer conn.Close()

	firstAsm := protocol.NewAssemblerAny(c.engine, []byte{protocol.HeaderChallengeResponse, finalHeader}, c.appID, c.logger)
	payload, err := c.exchange(ctx, conn, build(protocol.ChallengeUnknown), firstAsm)
	if err != nil {
		return nil, time.Since(t0), err
	}
	if payload[0] == finalHeader {
		// The server answered directly without requiring a challenge.
		return payload, time.Since(t0), nil
	}
	challengeResp, err := protocol.DecodeChallenge(payload)
	if err != nil {
		return nil, time.Since(t0), err
	}
	secondAsm := protocol.NewAssembler(c.engine, finalHeader, c.appID, c.logger)
	payload, err = c.exchange(ctx, conn, build(challengeResp.Challenge), secondAsm)
	return payload, time.Since(t0), err
}

// open resolves the effective timeout, dials the UDP endpoint, and
// returns it along with the start time (t0) the round trip is measured
// from and a cancel func that must be deferred by the caller.
func (c *Context) open(ctx context.Context, host string, port uint16, timeout time.Duration) (net.Conn, time.Time, context.CancelFunc, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp4", addr)
	if err != nil {
		cancel()
		return nil, time.Time{}, nil, errors.Wrap(err, "query: open endpoint")
	}
	return conn, time.Now(), cancel, nil
}

// exchange writes req once and feeds received datagrams to asm until it
// reports done, the assembler errors, or ctx's deadline elapses.
func (c *Context) exchange(ctx context.Context, conn net.Conn, req []byte, asm *protocol.Assembler) ([]byte, error) {
	if _, err := conn.Write(req); err != nil {
		return nil, errors.Wrap(err, "query: send request")
	}
	buf := make([]byte, maxDatagram)
	for {
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetReadDeadline(deadline)
		}
		n, err := conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrTimeout
			}
			var netErr net.Error
			if stderrors.As(err, &netErr) && netErr.Timeout() {
				return nil, ErrTimeout
			}
			return nil, errors.Wrap(err, "query: read datagram")
		}
		c.logger.Debug("received fragment", "bytes", n)
		payload, done, ferr := asm.Feed(buf[:n])
		if ferr != nil {
			c.logger.Warn("response error", "error", ferr)
			return nil, ferr
		}
		if done {
			return payload, nil
		}
		if ctx.Err() != nil {
			return nil, ErrTimeout
		}
	}
}
