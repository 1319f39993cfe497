// Copyright 2025 Taxentia Labs
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


package core

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// citationSanitizer replaces the characters that are unsafe in chunk
// identifiers. Only space, '/', and '.' are rewritten; everything else,
// including section signs, passes through unchanged.
var citationSanitizer = strings.NewReplacer(" ", "-", "/", "-", ".", "-")

// ChunkID builds the deterministic string identifier for a chunk:
// "{code}-{sanitized_citation}-chunk-{index}", e.g. "usc-26-U-S-C--61-chunk-0".
// The format is frozen for compatibility with the existing vector index.
func ChunkID(sourceType SourceType, citation string, index int) string {
	return sourceType.Code() + "-" + citationSanitizer.Replace(citation) + "-chunk-" + strconv.Itoa(index)
}

// NumericID derives the legacy 32-bit rolling hash of a string identifier.
//
// The algorithm reproduces, bit for bit, the JavaScript hash the original
// index was built with: starting from zero, each UTF-16 code unit folds in
// as acc = acc*31 + unit with 32-bit signed wraparound, and the final value
// is the absolute value of the signed accumulator. The vector index already
// holds entries keyed by this scheme; any deviation silently duplicates or
// orphans records rather than failing loudly, so the signed interpretation
// must not be changed.
//
// The result is non-negative and bounded to 32-bit magnitude. It is returned
// as int64 because the absolute value of the minimum 32-bit integer does not
// fit in an int32.
func NumericID(stringID string) int64 {
	var acc int32
	for _, r := range stringID {
		if r < 0x10000 {
			acc = acc*31 + int32(r)
			continue
		}
		hi, lo := utf16.EncodeRune(r)
		acc = acc*31 + int32(hi)
		acc = acc*31 + int32(lo)
	}

	v := int64(acc)
	if v < 0 {
		v = -v
	}
	return v
}

// NumericChunkID is a convenience combining ChunkID and NumericID.
func NumericChunkID(sourceType SourceType, citation string, index int) int64 {
	return NumericID(ChunkID(sourceType, citation, index))
}
