package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inlineTx struct{ calls int }

func (m *inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := m.DoTx(ctx, func(ctx context.Context) (any, error) { return nil, fn(ctx) })
	return err
}

func (m *inlineTx) DoTx(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	m.calls++
	return fn(ctx)
}

func TestInTx_ReturnsTypedValue(t *testing.T) {
	m := &inlineTx{}
	v, err := InTx(context.Background(), m, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, m.calls)
}

func TestInTx_ErrorYieldsZeroValue(t *testing.T) {
	boom := errors.New("boom")
	v, err := InTx(context.Background(), &inlineTx{}, func(context.Context) (string, error) { return "partial", boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, v)
}
