package redis

// Config holds publisher settings
type Config struct {
	// ChannelPrefix namespaces the per-room channels
	ChannelPrefix string
}

// DefaultConfig returns sensible defaults for the publisher
func DefaultConfig() Config {
	return Config{ChannelPrefix: "roulette:events"}
}
