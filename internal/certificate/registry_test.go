package certificate

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewMemRegistry()
	owner := uuid.New()

	_, err := r.OwnerOf(ctx, 7)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.ErrorIs(t, r.Assign(ctx, 7, owner), ErrCourseNotFound)

	require.NoError(t, r.CreateCourse(ctx, 7))
	assert.ErrorIs(t, r.CreateCourse(ctx, 7), ErrCourseExists)

	got, err := r.OwnerOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got, "fresh certificate is unassigned")

	require.NoError(t, r.Assign(ctx, 7, owner))
	assert.ErrorIs(t, r.Assign(ctx, 7, uuid.New()), ErrAlreadyAssigned)

	got, err = r.OwnerOf(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, owner, got)
}
