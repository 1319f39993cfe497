package ingestion

import "errors"

var (
	// ErrCounterRequired is returned when a token counter is not provided.
	ErrCounterRequired = errors.New("token counter required")

	// ErrChunkerRequired is returned when a chunker is not provided.
	ErrChunkerRequired = errors.New("chunker required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")

	// ErrBatchBuilderRequired is returned when a batch builder is not provided.
	ErrBatchBuilderRequired = errors.New("batch builder required")

	// ErrOrchestratorRequired is returned when an orchestrator is not provided.
	ErrOrchestratorRequired = errors.New("orchestrator required")

	// ErrCheckpointRepositoryRequired is returned when a checkpoint repository is not provided.
	ErrCheckpointRepositoryRequired = errors.New("checkpoint repository required")

	// ErrInvalidMaxCount is returned when a batch chunk limit is not positive.
	ErrInvalidMaxCount = errors.New("max chunk count must be positive")

	// ErrInvalidTokenBudget is returned when a token budget is not positive.
	ErrInvalidTokenBudget = errors.New("token budget must be positive")

	// ErrInvalidDelay is returned when a delay duration is negative.
	ErrInvalidDelay = errors.New("delay must not be negative")

	// ErrInvalidPrice is returned when a token price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")

	// ErrInvalidInterval is returned when a checkpoint interval is not positive.
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrRateLimitExhausted is returned when the provider stays rate limited
	// after the single retry the orchestrator allows.
	ErrRateLimitExhausted = errors.New("rate limit retry exhausted")
)
