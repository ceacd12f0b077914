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
	"compress/bzip2"
	"hash/crc32"
	"io"
	"log/slog"

	"github.com/valvequery/a2s/wire"
)

const maxFragmentTotal = 15

// Assembler reassembles one query's reply, which may arrive as a single
// datagram or as a sequence of split-mode fragments, into a single
// payload whose leading byte is verified against the expected response
// header.
//
// An Assembler is built for exactly one query and discarded after it
// reports Done (or after the query times out).
type Assembler struct {
	engine          Engine
	expectedHeaders []byte
	appID           *int32
	logger          *slog.Logger

	hasFirst      bool
	splitMode     int32
	answerID      int32
	total         uint8
	compressed    bool
	hasAssembled  bool
	assembledSize int32
	assembledCRC  uint32
	fragments     map[uint8][]byte
}

// NewAssembler returns an Assembler for one query expecting exactly one
// response header. appID may be nil if the caller does not know the
// app ID; logger may be nil to discard the soft PacketTotalTooHigh
// warning.
func NewAssembler(engine Engine, expectedHeader byte, appID *int32, logger *slog.Logger) *Assembler {
	return NewAssemblerAny(engine, []byte{expectedHeader}, appID, logger)
}

// NewAssemblerAny is like [NewAssembler] but accepts any of several
// response headers, for exchanges where a server may answer with a
// CHALLENGE reply in place of the requested PLAYER/RULES response.
func NewAssemblerAny(engine Engine, expectedHeaders []byte, appID *int32, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Assembler{
		engine:          engine,
		expectedHeaders: expectedHeaders,
		appID:           appID,
		logger:          logger,
		fragments:       make(map[uint8][]byte),
	}
}

// Feed processes one received datagram. When the response is complete,
// done is true and payload holds the assembled, header-verified bytes
// ready for the decoder. A nil payload with done=false and a nil error
// means either that more fragments are needed or that the datagram was
// a stray GoldSrc reply and was silently discarded. Feed keeps no
// completion state: a fragment whose index was already stored is
// reported as PacketNumberRepeated, even after completion.
func (a *Assembler) Feed(data []byte) (payload []byte, done bool, err error) {
	if a.engine == GoldSrc && len(a.expectedHeaders) == 1 && a.expectedHeaders[0] == HeaderInfoGoldSrcResponse {
		if !isGoldSrcInfoReply(data) {
			return nil, false, nil
		}
	}
	buf := wire.NewReader(data)
	splitMode, rerr := buf.ReadLong()
	if rerr != nil {
		return nil, false, newResponseError(InvalidSplitModeHeader, "short datagram: %s", rerr)
	}
	if !a.hasFirst {
		a.splitMode = splitMode
	} else if splitMode != a.splitMode {
		return nil, false, newResponseError(UnexpectedSplitModeChange, "got %d, want %d", splitMode, a.splitMode)
	}
	switch splitMode {
	case SplitSingle:
		rest := data[buf.Pos():]
		if err := a.checkHeader(rest); err != nil {
			return nil, false, err
		}
		a.hasFirst = true
		return rest, true, nil
	case SplitMulti:
		return a.feedFragment(buf, data)
	default:
		return nil, false, newResponseError(InvalidSplitModeHeader, "got %d", splitMode)
	}
}

func isGoldSrcInfoReply(data []byte) bool {
	return len(data) >= 5 &&
		data[0] == 0xFF && data[1] == 0xFF && data[2] == 0xFF && data[3] == 0xFF &&
		data[4] == HeaderInfoGoldSrcResponse
}

// sourceFragmentHeader is everything between the split-mode header and
// the fragment's payload bytes, for a Source-flavored multi-packet
// response.
type sourceFragmentHeader struct {
	answerID      int32
	total         uint8
	index         uint8
	assembledSize int32
	assembledCRC  uint32
	hasAssembled  bool
}

func (a *Assembler) parseSourceFragmentHeader(buf *wire.Buffer) (sourceFragmentHeader, error) {
	var h sourceFragmentHeader
	answerID, err := buf.ReadLong()
	if err != nil {
		return h, newResponseError(PacketNumberIsOutOfBounds, "truncated fragment header: %s", err)
	}
	total, err := buf.ReadByte()
	if err != nil {
		return h, newResponseError(PacketNumberIsOutOfBounds, "truncated fragment header: %s", err)
	}
	index, err := buf.ReadByte()
	if err != nil {
		return h, newResponseError(PacketNumberIsOutOfBounds, "truncated fragment header: %s", err)
	}
	omitsPacketSize := a.appID != nil && HasNoPacketSizeField(*a.appID)
	if !omitsPacketSize {
		if _, err := buf.ReadShort(); err != nil {
			return h, newResponseError(PacketNumberIsOutOfBounds, "truncated packet_size: %s", err)
		}
	}
	compressed := answerID>>31 != 0
	if index == 0 && compressed {
		size, err := buf.ReadLong()
		if err != nil {
			return h, newResponseError(DecompressionFailed, "truncated assembled_size: %s", err)
		}
		crc, err := buf.ReadLong()
		if err != nil {
			return h, newResponseError(DecompressionFailed, "truncated assembled_crc32: %s", err)
		}
		h.assembledSize = size
		h.assembledCRC = uint32(crc)
		h.hasAssembled = true
	}
	h.answerID, h.total, h.index = answerID, total, index
	return h, nil
}

func (a *Assembler) parseGoldSrcFragmentHeader(buf *wire.Buffer) (answerID int32, total, index uint8, err error) {
	answerID, err = buf.ReadLong()
	if err != nil {
		return 0, 0, 0, newResponseError(PacketNumberIsOutOfBounds, "truncated fragment header: %s", err)
	}
	packed, err := buf.ReadByte()
	if err != nil {
		return 0, 0, 0, newResponseError(PacketNumberIsOutOfBounds, "truncated fragment header: %s", err)
	}
	index = packed >> 4
	total = packed & 0x0F
	return answerID, total, index, nil
}

func (a *Assembler) feedFragment(buf *wire.Buffer, data []byte) (payload []byte, done bool, err error) {
	var answerID int32
	var total, index uint8
	var compressed bool
	var assembledSize int32
	var assembledCRC uint32
	var hasAssembled bool

	switch a.engine {
	case Source:
		h, err := a.parseSourceFragmentHeader(buf)
		if err != nil {
			return nil, false, err
		}
		answerID, total, index = h.answerID, h.total, h.index
		compressed = answerID>>31 != 0
		assembledSize, assembledCRC, hasAssembled = h.assembledSize, h.assembledCRC, h.hasAssembled
	case GoldSrc:
		var herr error
		answerID, total, index, herr = a.parseGoldSrcFragmentHeader(buf)
		if herr != nil {
			return nil, false, herr
		}
	}

	if !a.hasFirst {
		if total < 2 {
			return nil, false, newResponseError(PacketTotalTooLow, "total=%d", total)
		}
		if total > maxFragmentTotal {
			a.logger.Warn("fragment total exceeds soft limit", "total", total, "limit", maxFragmentTotal)
		}
		a.answerID = answerID
		a.total = total
		a.compressed = compressed
		a.hasFirst = true
	} else {
		if answerID != a.answerID {
			return nil, false, newResponseError(UnexpectedAnswerIDChange, "got %d, want %d", answerID, a.answerID)
		}
		if total != a.total {
			return nil, false, newResponseError(TotalPacketsChangedFromInitial, "got %d, want %d", total, a.total)
		}
	}
	// The assembled_size/assembled_crc32 fields only ride on fragment
	// index 0, regardless of when that fragment arrives relative to the
	// rest of the set.
	if index == 0 && hasAssembled {
		a.assembledSize = assembledSize
		a.assembledCRC = assembledCRC
		a.hasAssembled = true
	}
	if index >= a.total {
		return nil, false, newResponseError(PacketNumberIsOutOfBounds, "index=%d total=%d", index, a.total)
	}
	if _, dup := a.fragments[index]; dup {
		return nil, false, newResponseError(PacketNumberRepeated, "index=%d", index)
	}
	a.fragments[index] = append([]byte(nil), data[buf.Pos():]...)

	if len(a.fragments) != int(a.total) {
		return nil, false, nil
	}
	return a.assemble()
}

func (a *Assembler) assemble() (payload []byte, done bool, err error) {
	var concatenated bytes.Buffer
	for i := uint8(0); i < a.total; i++ {
		concatenated.Write(a.fragments[i])
	}

	var result []byte
	if a.compressed {
		r := bzip2.NewReader(bytes.NewReader(concatenated.Bytes()))
		decompressed, rerr := io.ReadAll(r)
		if rerr != nil {
			return nil, false, newResponseError(DecompressionFailed, "%s", rerr)
		}
		if a.hasAssembled {
			if int32(len(decompressed)) != a.assembledSize {
				return nil, false, newResponseError(ChecksumMismatch, "size got %d want %d", len(decompressed), a.assembledSize)
			}
			if got := crc32.ChecksumIEEE(decompressed); got != a.assembledCRC {
				return nil, false, newResponseError(ChecksumMismatch, "crc32 got %08x want %08x", got, a.assembledCRC)
			}
		}
		result = decompressed
	} else {
		result = concatenated.Bytes()
	}

	if err := a.checkHeader(result); err != nil {
		return nil, false, err
	}
	return result, true, nil
}

func (a *Assembler) checkHeader(payload []byte) error {
	if len(payload) > 0 {
		for _, want := range a.expectedHeaders {
			if payload[0] == want {
				return nil
			}
		}
	}
	got := byte(0)
	if len(payload) > 0 {
		got = payload[0]
	}
	return newResponseError(IncorrectResponseMessageHeader, "got %#x, want one of %#x", got, a.expectedHeaders)
}
