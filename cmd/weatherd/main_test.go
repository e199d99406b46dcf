package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type checker struct{ err error }

func (c checker) CheckReadiness(context.Context) error { return c.err }

func TestReadiness(t *testing.T) {
	assert.NoError(t, readiness{checker{}, checker{}}.CheckReadiness(context.Background()))

	notReady := errors.New("store unavailable")
	assert.ErrorIs(t, readiness{checker{}, checker{err: notReady}}.CheckReadiness(context.Background()), notReady)
}

func TestReadiness_Empty(t *testing.T) {
	assert.NoError(t, readiness{}.CheckReadiness(context.Background()))
}
