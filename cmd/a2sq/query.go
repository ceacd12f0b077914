// Copyright 2024 The a2s Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valvequery/a2s/internal/portset"
	"github.com/valvequery/a2s/internal/sweep"
	"github.com/valvequery/a2s/protocol"
	"github.com/valvequery/a2s/query"
)

var (
	flagInfo        bool
	flagPlayers     bool
	flagRules       bool
	flagPing        bool
	flagPorts       string
	flagTimeout     time.Duration
	flagConcurrency int
	flagInputFile   string
	flagAppID       int32
	flagSource      bool
	flagGoldSrc     bool
	flagCSV         bool
)

var queryCmd = &cobra.Command{
	Use:     "query [flags] network...",
	Short:   "Query one or more A2S servers",
	Example: "a2sq query --info -p 27015,27020-27022 192.0.2.0/28",
	RunE:    runQuery,
}

func init() {
	f := queryCmd.Flags()
	f.BoolVar(&flagInfo, "info", false, "send an A2S_INFO query")
	f.BoolVar(&flagPlayers, "players", false, "send an A2S_PLAYER query")
	f.BoolVar(&flagRules, "rules", false, "send an A2S_RULES query")
	f.BoolVar(&flagPing, "ping", false, "send a deprecated A2A_PING query")
	queryCmd.MarkFlagsMutuallyExclusive("info", "players", "rules", "ping")

	f.StringVarP(&flagPorts, "ports", "p", fmt.Sprintf("%d", protocol.PortSRCDS), "comma list and a-b ranges of ports")
	f.DurationVarP(&flagTimeout, "timeout", "t", 10*time.Second, "per-query timeout")
	f.IntVarP(&flagConcurrency, "concurrency", "c", 32, "maximum simultaneous queries")
	f.StringVarP(&flagInputFile, "input-file", "i", "", "read newline-separated networks from a file instead of args")
	f.Int32Var(&flagAppID, "app", 0, "pin decoding quirks to this Steam app ID")
	f.BoolVar(&flagSource, "source", false, "force Source engine framing")
	f.BoolVar(&flagGoldSrc, "goldsrc", false, "force GoldSrc engine framing")
	queryCmd.MarkFlagsMutuallyExclusive("source", "goldsrc")
	f.BoolVar(&flagCSV, "csv", false, "emit CSV (only valid with --info)")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if flagCSV && !flagInfo {
		return fmt.Errorf("--csv requires --info")
	}
	if !flagInfo && !flagPlayers && !flagRules && !flagPing {
		flagInfo = true
	}

	ports, err := portset.Parse(flagPorts)
	if err != nil {
		return err
	}

	networks := args
	if flagInputFile != "" {
		lines, err := readLines(flagInputFile)
		if err != nil {
			return err
		}
		networks = append(networks, lines...)
	}
	if len(networks) == 0 {
		return fmt.Errorf("no target networks given")
	}

	hosts, err := expandNetworks(networks)
	if err != nil {
		return err
	}

	var targets []sweep.Target
	for _, h := range hosts {
		for _, p := range ports {
			targets = append(targets, sweep.Target{Host: h, Port: p})
		}
	}

	opts := []query.Option{query.WithTimeout(flagTimeout)}
	if flagGoldSrc {
		opts = append(opts, query.WithEngine(protocol.GoldSrc))
	} else {
		opts = append(opts, query.WithEngine(protocol.Source))
	}
	if flagAppID != 0 {
		opts = append(opts, query.WithAppID(flagAppID))
	}
	qctx := query.New(opts...)

	driver := &sweep.Driver{Concurrency: flagConcurrency}
	results := driver.Run(context.Background(), targets, func(ctx context.Context, t sweep.Target) (any, error) {
		switch {
		case flagPlayers:
			v, _, err := qctx.QueryPlayers(ctx, t.Host, t.Port, flagTimeout)
			return v, err
		case flagRules:
			v, _, err := qctx.QueryRules(ctx, t.Host, t.Port, flagTimeout)
			return v, err
		case flagPing:
			v, _, err := qctx.QueryPing(ctx, t.Host, t.Port, flagTimeout)
			return v, err
		default:
			v, _, err := qctx.QueryInfo(ctx, t.Host, t.Port, flagTimeout)
			return v, err
		}
	})

	if flagCSV {
		return writeInfoCSV(os.Stdout, results)
	}
	writeHuman(os.Stdout, results)
	return nil
}

func readLines(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range splitLines(string(b)) {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			line := s[start:i]
			line = trimCR(line)
			out = append(out, line)
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, trimCR(s[start:]))
	}
	return out
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

// expandNetworks turns a mix of bare hosts, CIDRs, and "a-b" IPv4 last
// octet ranges into a flat host list.
func expandNetworks(networks []string) ([]string, error) {
	var hosts []string
	for _, n := range networks {
		switch {
		case containsByte(n, '/'):
			ip, ipnet, err := net.ParseCIDR(n)
			if err != nil {
				return nil, fmt.Errorf("invalid network %q: %w", n, err)
			}
			for cur := ip.Mask(ipnet.Mask); ipnet.Contains(cur); incIP(cur) {
				hosts = append(hosts, cur.String())
			}
		case containsByte(n, '-'):
			expanded, err := expandLastOctetRange(n)
			if err != nil {
				return nil, fmt.Errorf("invalid network %q: %w", n, err)
			}
			hosts = append(hosts, expanded...)
		default:
			hosts = append(hosts, n)
		}
	}
	return hosts, nil
}

// expandLastOctetRange expands "a.b.c.d-e" or "a.b.c.d-a.b.c.e" into the
// inclusive list of IPv4 addresses a.b.c.d through a.b.c.e. Both ends
// must share the same first three octets.
func expandLastOctetRange(n string) ([]string, error) {
	base, highStr, ok := strings.Cut(n, "-")
	if !ok {
		return nil, fmt.Errorf("missing '-'")
	}
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 {
		return nil, fmt.Errorf("not an IPv4 last-octet range")
	}
	prefix, lowStr := base[:dot], base[dot+1:]
	if hdot := strings.LastIndexByte(highStr, '.'); hdot >= 0 {
		if highStr[:hdot] != prefix {
			return nil, fmt.Errorf("range end %q is outside %s.0/24", highStr, prefix)
		}
		highStr = highStr[hdot+1:]
	}

	low, err := strconv.Atoi(lowStr)
	if err != nil || low < 0 || low > 255 {
		return nil, fmt.Errorf("invalid low octet %q", lowStr)
	}
	high, err := strconv.Atoi(highStr)
	if err != nil || high < 0 || high > 255 {
		return nil, fmt.Errorf("invalid high octet %q", highStr)
	}
	if low > high {
		return nil, fmt.Errorf("low octet %d greater than high octet %d", low, high)
	}
	if net.ParseIP(fmt.Sprintf("%s.%d", prefix, low)) == nil {
		return nil, fmt.Errorf("invalid base address %q", prefix)
	}

	hosts := make([]string, 0, high-low+1)
	for o := low; o <= high; o++ {
		hosts = append(hosts, fmt.Sprintf("%s.%d", prefix, o))
	}
	return hosts, nil
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			return
		}
	}
}
