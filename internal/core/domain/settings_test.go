package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero chunk size", func(s *Settings) { s.ChunkSize = 0 }},
		{"overlap equals chunk size", func(s *Settings) { s.ChunkOverlap = s.ChunkSize }},
		{"negative overlap", func(s *Settings) { s.ChunkOverlap = -1 }},
		{"zero top k", func(s *Settings) { s.TopK = 0 }},
		{"zero overfetch", func(s *Settings) { s.OverfetchFactor = 0 }},
		{"score above one", func(s *Settings) { s.MinScore = 1.5 }},
		{"empty base url", func(s *Settings) { s.BaseURL = "" }},
		{"zero concurrency", func(s *Settings) { s.MaxConcurrentRequests = 0 }},
		{"negative retries", func(s *Settings) { s.MaxRetries = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
