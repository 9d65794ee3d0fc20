package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/keyxmakerx/postgate/internal/apperror"
)

// Owned is a mutable resource bound to the user who created it.
type Owned interface {
	OwnerID() string
}

// Authorize is the ownership gate run before every update or delete of an
// owned resource. It loads the resource, fails NotFound if it is absent,
// then Forbidden unless subjectID owns it. The loaded resource is returned
// so the caller can mutate it without a second read.
//
// load must return an apperror.NotFound for a missing resource; any other
// error is reported as internal.
func Authorize[T Owned](ctx context.Context, subjectID, resourceID string, load func(context.Context, string) (T, error)) (T, error) {
	var zero T

	if subjectID == "" {
		return zero, apperror.NewUnauthorized(msgUnauthenticated)
	}

	resource, err := load(ctx, resourceID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return zero, appErr
		}
		return zero, apperror.NewInternal(fmt.Errorf("loading resource %s: %w", resourceID, err))
	}

	if resource.OwnerID() != subjectID {
		return zero, apperror.NewForbidden("you are not allowed to modify this resource")
	}

	return resource, nil
}
