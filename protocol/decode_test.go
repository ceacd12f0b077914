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

	"github.com/valvequery/a2s/wire"
)

func TestDecodeInfoSinglePacket(t *testing.T) {
	t.Parallel()
	buf := &wire.Buffer{}
	buf.WriteByte(HeaderInfoResponse)
	buf.WriteByte(0x11)
	buf.WriteString("Test")
	buf.WriteString("de_dust2")
	buf.WriteString("cstrike")
	buf.WriteString("Counter-Strike: Source")
	buf.WriteShort(240)
	buf.WriteByte(32)
	buf.WriteByte(32)
	buf.WriteByte(0)
	buf.WriteByte('d')
	buf.WriteByte('w')
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.WriteString("1.0.0")

	got, err := DecodeInfo(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeInfo() error = %v", err)
	}
	want := &InfoResponse{
		Protocol:          0x11,
		Name:              "Test",
		Map:               "de_dust2",
		Folder:            "cstrike",
		Game:              "Counter-Strike: Source",
		AppID:             240,
		Players:           32,
		MaxPlayers:        32,
		Bots:              0,
		ServerType:        ServerDedicated,
		ServerEnvironment: EnvWindows,
		ServerVisibility:  VisibilityPublic,
		VAC:               VACUnsecured,
		Version:           "1.0.0",
	}
	if *got != *want {
		t.Errorf("DecodeInfo() = %+v, want %+v", *got, *want)
	}
}

func TestDecodeInfoExtraDataFlags(t *testing.T) {
	t.Parallel()
	buf := &wire.Buffer{}
	buf.WriteByte(HeaderInfoResponse)
	buf.WriteByte(0x11)
	buf.WriteString("Name")
	buf.WriteString("map")
	buf.WriteString("folder")
	buf.WriteString("game")
	buf.WriteShort(10)
	buf.WriteByte(1)
	buf.WriteByte(2)
	buf.WriteByte(0)
	buf.WriteByte('l')
	buf.WriteByte('l')
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.WriteString("1.0")
	buf.WriteByte(0xB1) // GamePort | SteamID | Keywords | GameID
	buf.WriteShort(27015)
	buf.WriteLongLong(0x0102030405060708)
	buf.WriteString("alive,coop")
	buf.WriteLongLong(630)

	got, err := DecodeInfo(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeInfo() error = %v", err)
	}
	if got.GamePort == nil || *got.GamePort != 27015 {
		t.Errorf("GamePort = %v, want 27015", got.GamePort)
	}
	if got.SteamID == nil || *got.SteamID != 0x0102030405060708 {
		t.Errorf("SteamID = %v, want 0x0102030405060708", got.SteamID)
	}
	if got.SourceTVPort != nil {
		t.Errorf("SourceTVPort = %v, want nil (bit unset)", got.SourceTVPort)
	}
	if got.Keywords == nil || *got.Keywords != "alive,coop" {
		t.Errorf("Keywords = %v, want \"alive,coop\"", got.Keywords)
	}
	if got.GameID == nil || *got.GameID != 630 {
		t.Errorf("GameID = %v, want 630", got.GameID)
	}
}

func TestDecodeInfoTheShipFields(t *testing.T) {
	t.Parallel()
	buf := &wire.Buffer{}
	buf.WriteByte(HeaderInfoResponse)
	buf.WriteByte(0x11)
	buf.WriteString("Ship Server")
	buf.WriteString("ts_something")
	buf.WriteString("ship")
	buf.WriteString("The Ship")
	buf.WriteShort(int16(AppTheShip))
	buf.WriteByte(4)
	buf.WriteByte(8)
	buf.WriteByte(0)
	buf.WriteByte('d')
	buf.WriteByte('w')
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.WriteByte(byte(ShipModeElimination))
	buf.WriteByte(3)
	buf.WriteByte(60)
	buf.WriteString("1.0")

	got, err := DecodeInfo(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeInfo() error = %v", err)
	}
	if got.ShipMode == nil || *got.ShipMode != ShipModeElimination {
		t.Errorf("ShipMode = %v, want ShipModeElimination", got.ShipMode)
	}
	if got.ShipWitnesses == nil || *got.ShipWitnesses != 3 {
		t.Errorf("ShipWitnesses = %v, want 3", got.ShipWitnesses)
	}
	if got.ShipDuration == nil || *got.ShipDuration != 60 {
		t.Errorf("ShipDuration = %v, want 60", got.ShipDuration)
	}
	if got.Version != "1.0" {
		t.Errorf("Version = %q, want \"1.0\"", got.Version)
	}
}

func TestDecodeRulesTruncatedPair(t *testing.T) {
	t.Parallel()
	var raw bytes.Buffer
	raw.WriteByte(HeaderRulesResponse)
	raw.Write([]byte{2, 0})
	raw.WriteString("mp_friendlyfire\x000\x00")
	raw.WriteString("sv_gravity\x00")
	raw.WriteString("800") // value missing its terminator: a truncated reply

	got, err := DecodeRules(raw.Bytes())
	if err != nil {
		t.Fatalf("DecodeRules() error = %v", err)
	}
	want := []Rule{{Name: "mp_friendlyfire", Value: "0"}}
	if len(got.Rules) != len(want) || got.Rules[0] != want[0] {
		t.Errorf("Rules = %+v, want %+v", got.Rules, want)
	}
}

func TestDecodeRulesComplete(t *testing.T) {
	t.Parallel()
	buf := &wire.Buffer{}
	buf.WriteByte(HeaderRulesResponse)
	buf.WriteShort(2)
	buf.WriteString("mp_friendlyfire")
	buf.WriteString("0")
	buf.WriteString("sv_gravity")
	buf.WriteString("800")

	got, err := DecodeRules(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeRules() error = %v", err)
	}
	want := []Rule{
		{Name: "mp_friendlyfire", Value: "0"},
		{Name: "sv_gravity", Value: "800"},
	}
	if len(got.Rules) != len(want) {
		t.Fatalf("len(Rules) = %d, want %d", len(got.Rules), len(want))
	}
	for i := range want {
		if got.Rules[i] != want[i] {
			t.Errorf("Rules[%d] = %+v, want %+v", i, got.Rules[i], want[i])
		}
	}
}

func TestDecodePlayers(t *testing.T) {
	t.Parallel()
	buf := &wire.Buffer{}
	buf.WriteByte(HeaderPlayersResponse)
	buf.WriteByte(2)
	buf.WriteByte(0)
	buf.WriteString("Alice")
	buf.WriteLong(10)
	buf.WriteFloat(12.5)
	buf.WriteByte(0)
	buf.WriteString("Bob")
	buf.WriteLong(20)
	buf.WriteFloat(34.0)

	got, err := DecodePlayers(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodePlayers() error = %v", err)
	}
	if got.Count != 2 {
		t.Errorf("Count = %d, want 2", got.Count)
	}
	if len(got.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2", len(got.Players))
	}
	if got.Players[0].Name != "Alice" || got.Players[0].Score != 10 {
		t.Errorf("Players[0] = %+v", got.Players[0])
	}
	if got.Players[1].Name != "Bob" || got.Players[1].Score != 20 {
		t.Errorf("Players[1] = %+v", got.Players[1])
	}
}

func TestDecodeChallenge(t *testing.T) {
	t.Parallel()
	buf := &wire.Buffer{}
	buf.WriteByte(HeaderChallengeResponse)
	buf.WriteLong(584425803)

	got, err := DecodeChallenge(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeChallenge() error = %v", err)
	}
	if got.Challenge != 584425803 {
		t.Errorf("Challenge = %d, want 584425803", got.Challenge)
	}
}

func TestInfoHeaderFor(t *testing.T) {
	t.Parallel()
	appShip := int32(AppTheShip)
	sinMP := int32(AppSinMultiplayer)
	tests := []struct {
		name   string
		engine Engine
		appID  *int32
		want   byte
	}{
		{"source engine always I", Source, nil, HeaderInfoResponse},
		{"goldsrc unknown app defaults m", GoldSrc, nil, HeaderInfoGoldSrcResponse},
		{"goldsrc allow-listed app uses I", GoldSrc, &sinMP, HeaderInfoResponse},
		{"goldsrc non-allow-listed app uses m", GoldSrc, &appShip, HeaderInfoGoldSrcResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InfoHeaderFor(tt.engine, tt.appID); got != tt.want {
				t.Errorf("InfoHeaderFor(%v, %v) = %q, want %q", tt.engine, tt.appID, got, tt.want)
			}
		})
	}
}

