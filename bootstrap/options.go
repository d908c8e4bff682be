package bootstrap

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Default construction parameters.
const (
	DefaultBlockLength = 100
	DefaultUnit        = Day
)

type settings struct {
	block        BlockLength
	logger       logrus.FieldLogger
	metrics      *Metrics
	legacyReseed bool
}

func defaultSettings() *settings {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	return &settings{
		block:  BlockLength{Count: DefaultBlockLength, Unit: DefaultUnit},
		logger: discard,
	}
}

// Option configures a Resampler.
type Option func(*settings) error

// WithBlockLength sets the number of frequency units per block.
func WithBlockLength(count int) Option {
	return func(s *settings) error {
		s.block.Count = count
		return nil
	}
}

// WithUnit sets the frequency unit.
func WithUnit(u Unit) Option {
	return func(s *settings) error {
		s.block.Unit = u
		return nil
	}
}

// WithFrequency sets the frequency unit from a code accepted by ParseUnit.
func WithFrequency(code string) Option {
	return func(s *settings) error {
		u, err := ParseUnit(code)
		if err != nil {
			return err
		}
		s.block.Unit = u
		return nil
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *settings) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}

// WithMetrics records sampling activity into m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) error {
		s.metrics = m
		return nil
	}
}

// WithLegacyReseed re-seeds the random stream before every block draw
// instead of once per sample. With a fixed seed every draw then lands on the
// same grid position, so a sample is one block repeated. Only useful to
// reproduce results computed that way.
func WithLegacyReseed() Option {
	return func(s *settings) error {
		s.legacyReseed = true
		return nil
	}
}
