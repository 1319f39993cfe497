// Package local implements the ai interfaces for local OpenAI-compatible
// embedding services such as Ollama, LocalAI, and vLLM.
//
// Local services do not enforce rate limits, so errors from this package
// never wrap ai.ErrRateLimited; every failure is fatal for the request.
package local
