package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxFunc runs inside a transaction. Repository calls must use the ctx it receives.
type TxFunc func(ctx context.Context) error

// TransactionManager runs a unit of work atomically.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn TxFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{client: client}
}

// abortError carries a domain error out of WithTransaction so the driver
// does not retry it and callers still see the original value.
type abortError struct{ err error }

func (a abortError) Error() string { return a.err.Error() }
func (a abortError) Unwrap() error { return a.err }

func (m *mongoTransactionManager) WithTransaction(ctx context.Context, fn TxFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := fn(sessCtx); err != nil {
			return nil, abortError{err: err}
		}
		return nil, nil
	})
	return unwrapAbort(err)
}

// unwrapAbort returns the domain error carried by an abortError unchanged;
// any other failure is a transaction error.
func unwrapAbort(err error) error {
	if err == nil {
		return nil
	}
	var aborted abortError
	if errors.As(err, &aborted) {
		return aborted.err
	}
	return fmt.Errorf("transaction failed: %w", err)
}
