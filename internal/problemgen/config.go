package problemgen

// MaxBatchSize bounds every batch regardless of Config.BatchSize.
const MaxBatchSize = 5

// Config controls batch production and filtering.
type Config struct {
	// Validators run in order after the built-in structural check.
	// The first failure discards the candidate.
	Validators []Validator

	// BatchSize caps the number of accepted items per batch. Values outside
	// 1..MaxBatchSize fall back to the default or MaxBatchSize.
	BatchSize int

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:   MaxBatchSize,
		MaxTokens:   1500,
		Temperature: 0.9,
	}
}

func (c Config) batchLimit() int {
	switch {
	case c.BatchSize <= 0:
		return DefaultConfig().BatchSize
	case c.BatchSize > MaxBatchSize:
		return MaxBatchSize
	}
	return c.BatchSize
}
