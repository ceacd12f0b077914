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

package portset

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	got, err := Parse("27015,27020-27022")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []uint16{27015, 27020, 27021, 27022}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

func TestParseDeduplicatesAndSorts(t *testing.T) {
	t.Parallel()
	got, err := Parse("27020,27015,27015,27016-27018")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []uint16{27015, 27016, 27017, 27018, 27020}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse() = %v, want %v", got, want)
	}
}

func TestParseOutOfRange(t *testing.T) {
	t.Parallel()
	if _, err := Parse("70000"); err == nil {
		t.Error("Parse(\"70000\") error = nil, want error")
	}
}

func TestParseInvertedRange(t *testing.T) {
	t.Parallel()
	if _, err := Parse("20-10"); err == nil {
		t.Error("Parse(\"20-10\") error = nil, want error")
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()
	got, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Parse(\"\") = %v, want empty", got)
	}
}
