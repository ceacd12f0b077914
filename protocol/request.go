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

import "github.com/valvequery/a2s/wire"

// RequestKind identifies which A2S query to send.
type RequestKind int

const (
	RequestInfo RequestKind = iota
	RequestPlayer
	RequestRules
	RequestPing
	RequestGetChallenge
)

// infoPayload is the fixed literal payload of an A2S_INFO request.
const infoPayload = "Source Engine Query"

// BuildInfoRequest encodes an A2S_INFO request.
func BuildInfoRequest() []byte {
	buf := &wire.Buffer{}
	buf.WriteLong(SplitSingle)
	buf.WriteByte(headerInfo)
	buf.WriteString(infoPayload)
	return buf.Bytes()
}

// BuildPlayerRequest encodes an A2S_PLAYER request. Pass
// [ChallengeUnknown] when no challenge has been obtained yet.
func BuildPlayerRequest(challenge int32) []byte {
	return buildChallengeRequest(headerPlayer, challenge)
}

// BuildRulesRequest encodes an A2S_RULES request. Pass
// [ChallengeUnknown] when no challenge has been obtained yet.
func BuildRulesRequest(challenge int32) []byte {
	return buildChallengeRequest(headerRules, challenge)
}

func buildChallengeRequest(header byte, challenge int32) []byte {
	buf := &wire.Buffer{}
	buf.WriteLong(SplitSingle)
	buf.WriteByte(header)
	buf.WriteLong(challenge)
	return buf.Bytes()
}

// BuildPingRequest encodes a deprecated A2A_PING request.
func BuildPingRequest() []byte {
	buf := &wire.Buffer{}
	buf.WriteLong(SplitSingle)
	buf.WriteByte(headerPing)
	return buf.Bytes()
}

// BuildGetChallengeRequest encodes an A2S_SERVERQUERY_GETCHALLENGE
// request.
func BuildGetChallengeRequest() []byte {
	buf := &wire.Buffer{}
	buf.WriteLong(SplitSingle)
	buf.WriteByte(headerGetChallenge)
	return buf.Bytes()
}
