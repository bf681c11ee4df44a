package tablestore

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/phrazzld/tasktrack-api/internal/store"
)

// MapError maps an Azure Tables error onto the store error taxonomy.
// Errors that are already classified and unrecognized errors are returned
// unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if store.IsNotFoundError(err) || store.IsConstraintViolation(err) || store.IsUnavailable(err) {
		return err
	}

	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		switch {
		case respErr.StatusCode == http.StatusNotFound:
			return store.Classified(store.ErrNotFound, err)
		case respErr.StatusCode == http.StatusConflict,
			respErr.StatusCode == http.StatusBadRequest,
			respErr.StatusCode == http.StatusRequestEntityTooLarge:
			return store.Classified(store.ErrConstraintViolation, err)
		case respErr.StatusCode == http.StatusRequestTimeout,
			respErr.StatusCode == http.StatusTooManyRequests,
			respErr.StatusCode == http.StatusPreconditionFailed,
			respErr.StatusCode >= http.StatusInternalServerError:
			return store.Classified(store.ErrStoreUnavailable, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return store.Classified(store.ErrStoreUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return store.Classified(store.ErrStoreUnavailable, err)
	}

	return err
}

func hasStatus(err error, status int) bool {
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == status
}

func isNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// isConcurrencyConflict reports a lost optimistic-concurrency race: the ETag
// no longer matched, or another writer inserted the same key first.
func isConcurrencyConflict(err error) bool {
	return hasStatus(err, http.StatusPreconditionFailed) || hasStatus(err, http.StatusConflict)
}
