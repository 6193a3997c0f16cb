package project_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/project"
	"github.com/sh44ni/telalalbedaya-sub000/internal/store/memory"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	svc := project.NewService(memory.New())

	first, err := svc.Create(ctx, project.CreateParams{Name: "Al Mouj Towers"})
	require.NoError(t, err)
	assert.Equal(t, "PRJ-0001", first.Number)
	assert.Equal(t, project.StatusPlanning, first.Status)

	second, err := svc.Create(ctx, project.CreateParams{Name: "Seeb Gardens", Status: project.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "PRJ-0002", second.Number)

	_, err = svc.Create(ctx, project.CreateParams{Name: "Qurum", Status: "abandoned"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	first.Status = project.StatusCompleted
	require.NoError(t, svc.Update(ctx, first))

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusCompleted, got.Status)

	require.NoError(t, svc.Delete(ctx, second.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PRJ-0001", list[0].Number)
}
