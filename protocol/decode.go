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

	"github.com/valvequery/a2s/wire"
)

// InfoResponse is the decoded A2S_INFO reply for a Source-flavored
// server (header 'I'), including the GoldSrc titles that are
// decoded with this schema per [UsesSourceInfoSchema].
//
// Fields past Version are only populated when the corresponding
// Extra Data Flag bit was present; a nil pointer means the bit was
// unset or the reply was truncated before reaching it.
type InfoResponse struct {
	Protocol          byte
	Name              string
	Map               string
	Folder            string
	Game              string
	AppID             int16
	Players           byte
	MaxPlayers        byte
	Bots              byte
	ServerType        ServerType
	ServerEnvironment ServerEnvironment
	ServerVisibility  ServerVisibility
	VAC               VAC

	ShipMode      *TheShipGameMode
	ShipWitnesses *byte
	ShipDuration  *byte

	Version string

	GamePort     *int16
	SteamID      *uint64
	SourceTVPort *int16
	SourceTVName *string
	Keywords     *string
	GameID       *uint64
}

// DecodeInfo decodes a Source-schema A2S_INFO payload, including the
// leading header byte.
func DecodeInfo(payload []byte) (*InfoResponse, error) {
	buf := wire.NewReader(payload[1:])
	r := &InfoResponse{}
	var err error
	if r.Protocol, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	r.Name = buf.ReadString()
	r.Map = buf.ReadString()
	r.Folder = buf.ReadString()
	r.Game = buf.ReadString()
	appID, err := buf.ReadShort()
	if err != nil {
		return r, nil
	}
	r.AppID = appID
	if r.Players, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	if r.MaxPlayers, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	if r.Bots, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	b, err := buf.ReadByte()
	if err != nil {
		return r, nil
	}
	r.ServerType = ParseServerType(b)
	if b, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	r.ServerEnvironment = ParseServerEnvironment(b)
	if b, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	r.ServerVisibility = ServerVisibility(b)
	if b, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	r.VAC = VAC(b)

	if int32(r.AppID) == AppTheShip {
		mode, err := buf.ReadByte()
		if err != nil {
			return r, nil
		}
		m := TheShipGameMode(mode)
		r.ShipMode = &m
		w, err := buf.ReadByte()
		if err != nil {
			return r, nil
		}
		r.ShipWitnesses = &w
		d, err := buf.ReadByte()
		if err != nil {
			return r, nil
		}
		r.ShipDuration = &d
	}

	r.Version = buf.ReadString()

	if buf.Remaining() == 0 {
		return r, nil
	}
	edfByte, err := buf.ReadByte()
	if err != nil {
		return r, nil
	}
	edf := EDF(edfByte)
	if edf.Has(EDFGamePort) {
		if v, err := buf.ReadShort(); err == nil {
			r.GamePort = &v
		} else {
			return r, nil
		}
	}
	if edf.Has(EDFSteamID) {
		if v, err := buf.ReadLongLong(); err == nil {
			r.SteamID = &v
		} else {
			return r, nil
		}
	}
	if edf.Has(EDFSourceTV) {
		v, err := buf.ReadShort()
		if err != nil {
			return r, nil
		}
		r.SourceTVPort = &v
		name := buf.ReadString()
		r.SourceTVName = &name
	}
	if edf.Has(EDFKeywords) {
		kw := buf.ReadString()
		r.Keywords = &kw
	}
	if edf.Has(EDFGameID) {
		if v, err := buf.ReadLongLong(); err == nil {
			r.GameID = &v
		} else {
			return r, nil
		}
	}
	return r, nil
}

// InfoGoldSrcResponse is the decoded A2S_INFO reply for a GoldSrc
// server (header 'm').
type InfoGoldSrcResponse struct {
	Address           string
	Name              string
	Map               string
	Folder            string
	Game              string
	Players           byte
	MaxPlayers        byte
	Protocol          byte
	ServerType        ServerType
	ServerEnvironment ServerEnvironment
	ServerVisibility  ServerVisibility
	Mod               Mod

	ModLink           *string
	ModDownloadLink   *string
	ModVersion        *int32
	ModSize           *int32
	ModType           *ModType
	ModDLL            *ModDLL

	VAC  VAC
	Bots byte
}

// DecodeInfoGoldSrc decodes a GoldSrc-schema A2S_INFO payload,
// including the leading header byte.
func DecodeInfoGoldSrc(payload []byte) (*InfoGoldSrcResponse, error) {
	buf := wire.NewReader(payload[1:])
	r := &InfoGoldSrcResponse{}
	r.Address = buf.ReadString()
	r.Name = buf.ReadString()
	r.Map = buf.ReadString()
	r.Folder = buf.ReadString()
	r.Game = buf.ReadString()
	var err error
	if r.Players, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	if r.MaxPlayers, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	if r.Protocol, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	b, err := buf.ReadByte()
	if err != nil {
		return r, nil
	}
	r.ServerType = ParseServerType(b)
	if b, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	r.ServerEnvironment = ParseServerEnvironment(b)
	if b, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	r.ServerVisibility = ServerVisibility(b)
	mod, err := buf.ReadByte()
	if err != nil {
		return r, nil
	}
	r.Mod = Mod(mod)

	if r.Mod == ModCustom {
		link := buf.ReadString()
		r.ModLink = &link
		dl := buf.ReadString()
		r.ModDownloadLink = &dl
		if _, err := buf.ReadByte(); err != nil { // reserved null byte
			return r, nil
		}
		ver, err := buf.ReadLong()
		if err != nil {
			return r, nil
		}
		r.ModVersion = &ver
		size, err := buf.ReadLong()
		if err != nil {
			return r, nil
		}
		r.ModSize = &size
		mt, err := buf.ReadByte()
		if err != nil {
			return r, nil
		}
		modType := ModType(mt)
		r.ModType = &modType
		md, err := buf.ReadByte()
		if err != nil {
			return r, nil
		}
		modDLL := ModDLL(md)
		r.ModDLL = &modDLL
	}

	vac, err := buf.ReadByte()
	if err != nil {
		return r, nil
	}
	r.VAC = VAC(vac)
	if r.Bots, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	return r, nil
}

// Player is one entry of an A2S_PLAYERS reply.
type Player struct {
	Index    byte
	Name     string
	Score    int32
	Duration float32 // seconds
}

// PlayersResponse is the decoded A2S_PLAYER reply.
//
// Count is the server-declared player count; len(Players) may be
// smaller, since connecting players are counted but not listed.
type PlayersResponse struct {
	Count   byte
	Players []Player
}

// DecodePlayers decodes an A2S_PLAYER payload, including the leading
// header byte.
func DecodePlayers(payload []byte) (*PlayersResponse, error) {
	buf := wire.NewReader(payload[1:])
	r := &PlayersResponse{}
	var err error
	if r.Count, err = buf.ReadByte(); err != nil {
		return r, nil
	}
	for buf.Remaining() > 0 {
		start := buf.Pos()
		var p Player
		if p.Index, err = buf.ReadByte(); err != nil {
			buf.Seek(start)
			break
		}
		p.Name = buf.ReadString()
		if p.Score, err = buf.ReadLong(); err != nil {
			buf.Seek(start)
			break
		}
		if p.Duration, err = buf.ReadFloat(); err != nil {
			buf.Seek(start)
			break
		}
		r.Players = append(r.Players, p)
	}
	return r, nil
}

// Rule is one name/value pair of an A2S_RULES reply.
type Rule struct {
	Name  string
	Value string
}

// RulesResponse is the decoded A2S_RULES reply. Rules preserves the
// order rules arrived on the wire.
type RulesResponse struct {
	Rules []Rule
}

// DecodeRules decodes an A2S_RULES payload, including the leading
// header byte. A pair is only appended once both its name and value
// strings are fully NUL-terminated in the remaining bytes; a payload
// truncated mid-pair yields every fully parsed prior pair and no error.
func DecodeRules(payload []byte) (*RulesResponse, error) {
	buf := wire.NewReader(payload[1:])
	r := &RulesResponse{}
	if _, err := buf.ReadShort(); err != nil { // count, informational only
		return r, nil
	}
	body := buf.Bytes()
	for {
		start := buf.Pos()
		nameEnd := bytes.IndexByte(body[start:], 0)
		if nameEnd < 0 {
			break
		}
		nameEnd += start
		valueStart := nameEnd + 1
		valueEnd := bytes.IndexByte(body[valueStart:], 0)
		if valueEnd < 0 {
			break
		}
		name := buf.ReadString()
		value := buf.ReadString()
		r.Rules = append(r.Rules, Rule{Name: name, Value: value})
	}
	return r, nil
}

// ChallengeResponse is the decoded A2S_SERVERQUERY_GETCHALLENGE reply,
// also sent in response to a PLAYER/RULES request carrying the
// ChallengeUnknown sentinel.
type ChallengeResponse struct {
	Challenge int32
}

// DecodeChallenge decodes a CHALLENGE payload, including the leading
// header byte.
func DecodeChallenge(payload []byte) (*ChallengeResponse, error) {
	buf := wire.NewReader(payload[1:])
	v, err := buf.ReadLong()
	if err != nil {
		return &ChallengeResponse{}, nil
	}
	return &ChallengeResponse{Challenge: v}, nil
}

// PingResponse is the decoded (deprecated) A2A_PING reply. Per the
// protocol's own ambiguity between engines here, Payload is returned
// as-is and never interpreted further.
type PingResponse struct {
	Payload string
}

// DecodePing decodes a PING payload, including the leading header byte.
func DecodePing(payload []byte) (*PingResponse, error) {
	buf := wire.NewReader(payload[1:])
	return &PingResponse{Payload: buf.ReadString()}, nil
}

// InfoHeaderFor returns the response header the assembler should expect
// for an INFO query, accounting for the GoldSrc titles that are
// nonetheless decoded with the Source INFO schema.
func InfoHeaderFor(engine Engine, appID *int32) byte {
	if engine == Source {
		return HeaderInfoResponse
	}
	if appID != nil && UsesSourceInfoSchema(*appID) {
		return HeaderInfoResponse
	}
	return HeaderInfoGoldSrcResponse
}
