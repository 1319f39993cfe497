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


// Package ai provides abstractions for the embedding services the ingestion
// pipeline depends on.
//
// The package defines the interfaces the orchestration layer consumes,
// allowing the core domain and business logic to depend on abstractions
// rather than concrete implementations:
//
//   - Embedder: generates vector embeddings from text
//   - EmbeddingProvider: aggregates an embedder with its configured
//     dimension and lifecycle
//
// # Implementation Packages
//
// Three implementation sub-packages are included:
//
//   - ai/openai: the OpenAI embeddings API (or any server speaking its
//     wire format) via the official-style client
//   - ai/local: local OpenAI-compatible services (Ollama, LocalAI, vLLM)
//     via langchaingo
//   - ai/mock: test doubles for unit testing without external services
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, local.NewProvider) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// a concrete backend:
//
//	provider, err := openai.NewProvider(cfg) // returns ai.EmbeddingProvider
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable behavior injection via function fields and call-count assertions:
//
//	mockEmbed := mock.NewMockEmbedder()
//	mockEmbed.EmbedTextsFunc = func(...) ...
//	count := mockEmbed.CallCount()
//
// # Error Contract
//
// Implementations surface rate limiting as ErrRateLimited (wrapped, so
// errors.Is works); callers treat any other failure as fatal for the
// request. This is the distinction the embedding orchestrator's retry
// policy is built on.
package ai
