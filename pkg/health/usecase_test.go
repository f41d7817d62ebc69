package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name  string
	err   error
	calls int
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(context.Context) error {
	s.calls++
	return s.err
}

func TestReady_AllHealthy(t *testing.T) {
	a, b := &stubChecker{name: "postgres"}, &stubChecker{name: "redis"}
	assert.NoError(t, NewService(a, nil, b).Ready(context.Background()))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestReady_NamesFailingDependency(t *testing.T) {
	down := errors.New("connection refused")
	a := &stubChecker{name: "postgres", err: down}
	b := &stubChecker{name: "redis"}

	err := NewService(a, b).Ready(context.Background())
	assert.ErrorIs(t, err, down)
	assert.EqualError(t, err, "postgres: connection refused")
	assert.Zero(t, b.calls)
}
