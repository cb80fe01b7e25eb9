package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithGridRetention sets how many control grids are kept per match. Older
// frames keep their summary but drop the grid. Zero or less keeps all.
func WithGridRetention(n int) Option {
	return func(s *MemoryStore) {
		s.gridRetention = n
	}
}
