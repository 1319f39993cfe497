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


package chunk

import "errors"

var (
	// ErrInvalidChunkSize indicates a non-positive max chunk size.
	ErrInvalidChunkSize = errors.New("max chunk size must be positive")

	// ErrInvalidOverlap indicates a negative overlap size or one that is
	// not below the max chunk size.
	ErrInvalidOverlap = errors.New("invalid overlap size")

	// ErrSplitterRequired indicates a nil SentenceSplitter was provided.
	ErrSplitterRequired = errors.New("sentence splitter required")
)
