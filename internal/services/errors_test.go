package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := notFound("recipe %d not found", 4)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.Equal(t, "recipe 4 not found", err.Error())
}

func TestErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("planning: %w", permissionDenied("not yours"))

	assert.ErrorIs(t, err, ErrPermissionDenied)

	var svcErr *Error
	assert.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindPermissionDenied, svcErr.Kind)
}

func TestListNotOwnedOrNotFoundIsNotFound(t *testing.T) {
	assert.ErrorIs(t, ErrListNotOwnedOrNotFound, ErrNotFound)
}
