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

// Package portset parses the -p/--ports expression grammar used by the
// bulk sweep driver: a comma-separated list of single ports and
// inclusive a-b ranges, e.g. "27015,27020-27022".
package portset

import (
	"fmt"
	"strconv"
	"strings"
)

const maxPort = 65535

// Parse parses expr and returns the set of ports named, deduplicated
// and in ascending order.
func Parse(expr string) ([]uint16, error) {
	seen := make(map[uint16]bool)
	var ports []uint16
	add := func(p int) error {
		if p < 0 || p > maxPort {
			return fmt.Errorf("portset: port %d out of range 0..%d", p, maxPort)
		}
		u := uint16(p)
		if !seen[u] {
			seen[u] = true
			ports = append(ports, u)
		}
		return nil
	}

	for _, term := range strings.Split(expr, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(term, "-")
		if !isRange {
			p, err := strconv.Atoi(lo)
			if err != nil {
				return nil, fmt.Errorf("portset: %q: %w", term, err)
			}
			if err := add(p); err != nil {
				return nil, err
			}
			continue
		}
		loN, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("portset: %q: %w", term, err)
		}
		hiN, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("portset: %q: %w", term, err)
		}
		if loN > hiN {
			return nil, fmt.Errorf("portset: %q: range start exceeds end", term)
		}
		for p := loN; p <= hiN; p++ {
			if err := add(p); err != nil {
				return nil, err
			}
		}
	}
	sortUint16(ports)
	return ports, nil
}

// sortUint16 is a small insertion sort; port lists from CLI input are
// never large enough to warrant sort.Slice's overhead or its
// indirection through a less func.
func sortUint16(s []uint16) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i - 1
		for j >= 0 && s[j] > v {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = v
	}
}
