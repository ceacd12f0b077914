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

// Steam application IDs with title-specific wire quirks. Apart from
// AppSinEpisodesEmergence, which nothing in this module branches on,
// these are the IDs the assembler and decoder consult; this is not a
// general app ID registry.
const (
	AppSourceSDKBase2006              int32 = 215
	AppSinEpisodesEmergence           int32 = 1300
	AppRagDollKungFu                  int32 = 1002
	AppSinMultiplayer                 int32 = 1309
	AppTheShip                        int32 = 2400
	AppEternalSilence                 int32 = 17550
	AppInsurgencyModernInfantryCombat int32 = 17700
)

// noPacketSizeField is the allow-list of apps whose multi-packet Source
// responses omit the cut-off packet_size field in the fragment header:
// the first fragment jumps straight from the base header to
// assembled_size/assembled_crc32 on compressed responses.
var noPacketSizeField = map[int32]bool{
	AppSourceSDKBase2006:              true,
	AppEternalSilence:                 true,
	AppInsurgencyModernInfantryCombat: true,
}

// HasNoPacketSizeField reports whether appID is on the allow-list of
// titles whose Source multi-packet fragment header omits the cut-off
// packet_size field.
func HasNoPacketSizeField(appID int32) bool {
	return noPacketSizeField[appID]
}

// goldSrcUsesSourceInfoSchema is the allow-list of GoldSrc titles whose
// engine framing is GoldSrc but whose INFO response is nonetheless
// encoded with the Source INFO schema.
var goldSrcUsesSourceInfoSchema = map[int32]bool{
	AppSinMultiplayer: true,
	AppRagDollKungFu:  true,
}

// UsesSourceInfoSchema reports whether a GoldSrc-flavored server with
// the given app ID should be decoded with the Source INFO schema
// instead of the GoldSrc one.
func UsesSourceInfoSchema(appID int32) bool {
	return goldSrcUsesSourceInfoSchema[appID]
}

// Port names well-known A2S query ports.
type Port uint16

const (
	PortSRCDS               Port = 27015
	PortSourceTV            Port = 27020
	PortHLTV                Port = PortSourceTV
	PortInsurgencySandstorm Port = 27131
)
