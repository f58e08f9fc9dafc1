package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/telehealth-core/internal/diagnosis"
	"github.com/iliyamo/telehealth-core/internal/service"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrEmptyBody, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrNotBound, http.StatusUnauthorized},
		{service.ErrInvalidActor, http.StatusForbidden},
		{service.ErrUnauthorizedPeer, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrDuplicateUsername, http.StatusConflict},
		{service.ErrAlreadyResolved, http.StatusConflict},
		{service.ErrNoPeer, http.StatusConflict},
		{fmt.Errorf("%w: %w", service.ErrStoreTimeout, errors.New("deadline")), http.StatusGatewayTimeout},
		{fmt.Errorf("%w: %w", service.ErrEscalationFailed, service.ErrStoreUnavailable), http.StatusInternalServerError},
		{service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{service.ErrUnavailable, http.StatusServiceUnavailable},
		{diagnosis.ErrPredict, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		got, _ := statusFor(tc.err)
		assert.Equal(t, tc.want, got, tc.err.Error())
	}
}

func TestStatusForHidesInternalDetail(t *testing.T) {
	_, msg := statusFor(fmt.Errorf("%w: %w", service.ErrStoreUnavailable, errors.New("dial tcp 10.0.0.5:3306")))
	assert.Equal(t, "service unavailable", msg)
}
