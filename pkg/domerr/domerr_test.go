package domerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodePersistence, "create screening record")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodePersistence, CodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := New(CodeEmbeddingUnavailable, "embed name")
	outer := fmt.Errorf("screen: %w", inner)

	assert.True(t, Is(outer, CodeEmbeddingUnavailable))
	assert.False(t, Is(outer, CodePersistence))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(CodeBadRequest))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(CodeEmbeddingUnavailable))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(CodeTimeout))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(CodeReconciliation))
}
