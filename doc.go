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

// Package a2s provides a client for the Source/GoldSrc A2S
// server-query protocol: A2S_INFO, A2S_PLAYER, A2S_RULES, the
// A2S_SERVERQUERY_GETCHALLENGE handshake, and the deprecated A2A_PING.
//
// See package query for the per-invocation query engine and package
// internal/sweep for fanning queries out across many targets
// concurrently under a configurable limit.
//
// Documentation for the wire protocol can be found at
// https://developer.valvesoftware.com/wiki/Server_queries.
package a2s
