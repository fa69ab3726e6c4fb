package rng

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level, giving
// tuning sessions an audit trail of the randomness that shaped a fight.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a LoggedSource that draws from src and logs each
// draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
//
// Precondition: n > 0.
func (s *LoggedSource) Intn(n int) int {
	v := s.src.Intn(n)
	s.logger.Debug("rng draw",
		zap.String("kind", "intn"),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result.
func (s *LoggedSource) Float64() float64 {
	v := s.src.Float64()
	s.logger.Debug("rng draw",
		zap.String("kind", "float64"),
		zap.Float64("value", v),
	)
	return v
}
