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
	"encoding/csv"
	"fmt"
	"io"

	"github.com/valvequery/a2s/internal/sweep"
	"github.com/valvequery/a2s/query"
)

// writeHuman prints one line per target. It is a thin reporting layer
// over the decoded values sweep.Driver.Run already produced; it makes
// no protocol decisions of its own.
func writeHuman(w io.Writer, results []sweep.Result) {
	for _, r := range results {
		addr := fmt.Sprintf("%s:%d", r.Target.Host, r.Target.Port)
		if r.Err != nil {
			fmt.Fprintf(w, "%s\tERROR\t%s\n", addr, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", addr, r.Value)
	}
}

// writeInfoCSV emits one CSV row per target for --info results.
// Non-INFO values fail with an error from the caller's --csv guard
// before reaching here.
func writeInfoCSV(w io.Writer, results []sweep.Result) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"host", "port", "name", "map", "game", "players", "max_players", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{r.Target.Host, fmt.Sprintf("%d", r.Target.Port)}
		if r.Err != nil {
			row = append(row, "", "", "", "", "", r.Err.Error())
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		info, _ := r.Value.(*query.InfoResult)
		if info == nil {
			row = append(row, "", "", "", "", "", "unexpected value type")
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		switch {
		case info.Source != nil:
			s := info.Source
			row = append(row, s.Name, s.Map, s.Game, fmt.Sprintf("%d", s.Players), fmt.Sprintf("%d", s.MaxPlayers), "")
		case info.GoldSrc != nil:
			g := info.GoldSrc
			row = append(row, g.Name, g.Map, g.Game, fmt.Sprintf("%d", g.Players), fmt.Sprintf("%d", g.MaxPlayers), "")
		default:
			row = append(row, "", "", "", "", "", "empty response")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
