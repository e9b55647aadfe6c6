package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_BeginCancelsPrevious(t *testing.T) {
	var g Guard

	ctx1, gen1 := g.Begin(context.Background())
	ctx2, gen2 := g.Begin(context.Background())

	assert.Error(t, ctx1.Err())
	assert.NoError(t, ctx2.Err())
	assert.False(t, g.Current(gen1))
	assert.True(t, g.Current(gen2))
}

func TestGuard_Reset(t *testing.T) {
	var g Guard

	ctx, gen := g.Begin(context.Background())
	g.Reset()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, g.Current(gen))
}

func TestGuard_Done(t *testing.T) {
	var g Guard

	ctx, gen := g.Begin(context.Background())
	g.Done(gen)

	assert.Error(t, ctx.Err())
	assert.True(t, g.Current(gen))
}
