package types

// Option is a functional option for configuring a single cache operation.
type Option func(*CacheOptions)

// ApplyOptions builds CacheOptions from functional options on top of the
// defaults.
func ApplyOptions(opts ...Option) *CacheOptions {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// ManagerOptions holds construction-time overrides for the cache manager
// and breaker.
type ManagerOptions struct {
	// Logger is the structured logger to use.
	Logger Logger

	// Metrics is the metrics recorder.
	Metrics MetricsRecorder

	// Serializer is the value serializer.
	Serializer Serializer

	// RedisAddress overrides the Redis address from config.
	RedisAddress string

	// RedisPassword overrides the Redis password from config.
	// Uses SecretString so the value never reaches logs or config dumps.
	RedisPassword SecretString

	// RedisDB overrides the Redis database from config.
	RedisDB int

	// LocalDir overrides the client-durable tier's directory.
	LocalDir string

	// DisableRedis disables the Redis tier entirely.
	DisableRedis bool

	// DisableLocal disables the client-durable tier entirely.
	DisableLocal bool
}
