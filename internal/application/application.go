package application

import "context"

// UseCase is the contract every application entry point satisfies.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
