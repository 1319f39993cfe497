// Package openai implements the ai interfaces against the OpenAI
// embeddings API.
//
// The package works with api.openai.com and with any service that speaks
// the same wire format. Rate-limit responses (HTTP 429) are surfaced as
// ai.ErrRateLimited so the orchestration layer can apply its retry policy.
package openai
