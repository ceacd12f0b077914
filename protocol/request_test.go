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

package protocol

import (
	"bytes"
	"testing"
)

func TestBuildInfoRequest(t *testing.T) {
	t.Parallel()
	got := BuildInfoRequest()
	want := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0x54,
		'S', 'o', 'u', 'r', 'c', 'e', ' ', 'E', 'n', 'g', 'i', 'n', 'e', ' ', 'Q', 'u', 'e', 'r', 'y', 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("BuildInfoRequest() = % X; want % X", got, want)
	}
	if len(got) != 25 {
		t.Errorf("len = %d; want 25", len(got))
	}
}

func TestBuildPlayerRequest(t *testing.T) {
	t.Parallel()
	t.Run("no challenge", func(t *testing.T) {
		got := BuildPlayerRequest(ChallengeUnknown)
		want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x55, 0xFF, 0xFF, 0xFF, 0xFF}
		if !bytes.Equal(got, want) {
			t.Errorf("got % X; want % X", got, want)
		}
	})
	t.Run("with challenge", func(t *testing.T) {
		got := BuildPlayerRequest(584425803)
		want := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x55, 0x4B, 0xA1, 0xD5, 0x22}
		if !bytes.Equal(got, want) {
			t.Errorf("got % X; want % X", got, want)
		}
	})
}
