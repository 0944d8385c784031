package service

import (
	"context"
	"errors"
	"testing"

	"puppytalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireOwner(t *testing.T) {
	posts := map[uint]*models.Post{1: {ID: 1, UserID: 10}}
	load := func(_ context.Context, id uint) (*models.Post, error) {
		if id == 99 {
			return nil, models.NewDBError(errors.New("down"))
		}
		if p, ok := posts[id]; ok {
			return p, nil
		}
		return nil, models.NewNotFoundError(models.CodePostNotFound)
	}
	owner := func(p *models.Post) uint { return p.UserID }
	ctx := context.Background()

	p, err := RequireOwner(ctx, 1, 10, load, owner, models.CodePostNotFound)
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.ID)

	_, err = RequireOwner(ctx, 1, 11, load, owner, models.CodePostNotFound)
	assert.Equal(t, models.CodeForbidden, models.CodeOf(err))

	_, err = RequireOwner(ctx, 2, 10, load, owner, models.CodePostNotFound)
	assert.Equal(t, models.CodePostNotFound, models.CodeOf(err))

	_, err = RequireOwner(ctx, 99, 10, load, owner, models.CodePostNotFound)
	assert.Equal(t, models.CodeDBError, models.CodeOf(err))

	nilLoad := func(context.Context, uint) (*models.Post, error) { return nil, nil }
	_, err = RequireOwner(ctx, 3, 10, nilLoad, owner, models.CodeCommentNotFound)
	assert.Equal(t, models.CodeCommentNotFound, models.CodeOf(err))
}
