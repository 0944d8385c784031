package service

import (
	"context"

	"puppytalk/internal/models"
)

// RequireOwner loads the resource id and checks that userID owns it. A
// missing resource fails with notFound, someone else's with FORBIDDEN.
func RequireOwner[T any](
	ctx context.Context,
	id, userID uint,
	load func(context.Context, uint) (*T, error),
	owner func(*T) uint,
	notFound models.Code,
) (*T, error) {
	res, err := load(ctx, id)
	if err != nil {
		if models.CodeOf(err) == notFound || models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError(notFound)
		}
		return nil, err
	}
	if res == nil {
		return nil, models.NewNotFoundError(notFound)
	}
	if owner(res) != userID {
		return nil, models.NewForbiddenError()
	}
	return res, nil
}
