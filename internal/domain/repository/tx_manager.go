package repository

import "context"

// TxManager выполняет fn в одной транзакции. Транзакция передаётся через ctx,
// поэтому хранилища должны брать querier из переданного контекста.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// DoTx откатывает транзакцию, если fn вернула ошибку.
	DoTx(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error)
}

// InTx is DoTx with a typed result.
func InTx[T any](ctx context.Context, m TxManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	res, err := m.DoTx(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}
