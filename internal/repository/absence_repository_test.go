package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/model"
)

func absence(userID uint, start, end time.Time) *model.AbsencePeriod {
	return &model.AbsencePeriod{UserID: userID, StartDate: start, EndDate: end}
}

func TestListOverlapping(t *testing.T) {
	ctx := context.Background()
	repo := NewAbsenceRepository(newTestDB(t), nil)

	require.NoError(t, repo.Create(ctx, absence(1, day(2026, 2, 1), day(2026, 2, 5))))
	require.NoError(t, repo.Create(ctx, absence(1, day(2026, 3, 1), day(2026, 3, 3))))
	require.NoError(t, repo.Create(ctx, absence(2, day(2026, 2, 1), day(2026, 2, 28))))

	tests := []struct {
		name     string
		from, to int
		want     int
	}{
		{"touching start", 5, 6, 1},
		{"inside", 2, 3, 1},
		{"gap between periods", 6, 28, 0},
		{"before all", -3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := day(2026, 2, 1).AddDate(0, 0, tt.from-1)
			to := day(2026, 2, 1).AddDate(0, 0, tt.to-1)
			got, err := repo.ListOverlapping(ctx, 1, from, to)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}

	all, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
