package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_RejectsInvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "://not-a-url")
	assert.Error(t, err)
}

func TestProgramFilters_Defaults(t *testing.T) {
	filters := ProgramFilters{Region: "BY"}
	assert.Equal(t, 0, filters.Limit)
	assert.Empty(t, filters.Category)
}

func TestClose_NilPoolIsSafe(t *testing.T) {
	db := &DB{}
	assert.NotPanics(t, func() { db.Close() })
}
