//go:build !cuda
// +build !cuda

package stereo

import (
	"fmt"

	"go.uber.org/zap"
)

// NewMatcherFactory returns a factory that always fails: the external SGM
// library is CUDA-only and this binary was built without the cuda tag.
func NewMatcherFactory(logger *zap.Logger) MatcherFactory {
	return func(Config) (Matcher, error) {
		return nil, fmt.Errorf("SGM matcher unavailable: built without CUDA support (rebuild with -tags cuda)")
	}
}
