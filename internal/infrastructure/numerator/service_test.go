package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	corenumerator "supplyfin/internal/core/numerator"
)

func TestGetNextNumber_NilService(t *testing.T) {
	var s *Service
	_, err := s.GetNextNumber(t.Context(), corenumerator.DefaultConfig("DD", "x"), time.Now())
	assert.Error(t, err)
}
