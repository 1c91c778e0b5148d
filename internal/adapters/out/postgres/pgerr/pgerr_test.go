package pgerr_test

import (
	"errors"
	"fmt"
	"testing"

	"exportdocs/internal/adapters/out/postgres/pgerr"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "idx_users_username"})

	assert.True(t, pgerr.IsUniqueViolation(err, "idx_users_username"))
	assert.True(t, pgerr.IsUniqueViolation(err, ""))
	assert.False(t, pgerr.IsUniqueViolation(err, "idx_shipments_waybill_number"))
	assert.False(t, pgerr.IsUniqueViolation(errors.New("boom"), ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"foreign key", &pq.Error{Code: "23503", Constraint: "fk_shipments_items"}, true},
		{"wrapped foreign key", fmt.Errorf("create items: %w", &pq.Error{Code: "23503"}), true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"other error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, pgerr.IsForeignKeyViolation(tc.err))
		})
	}
}
