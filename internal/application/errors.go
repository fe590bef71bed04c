package application

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/identity"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
)

// Kind classifies a failed use case for callers.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindOutOfStock         Kind = "OUT_OF_STOCK"
	KindNotFound           Kind = "NOT_FOUND"
	KindGatewayUnavailable Kind = "GATEWAY_UNAVAILABLE"
	// KindPartialFailure means the order exists but its stock was never debited.
	KindPartialFailure Kind = "PARTIAL_FAILURE"
	KindInternal       Kind = "INTERNAL"
)

type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
}

var metadataByKind = map[Kind]Metadata{
	KindValidation: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "validation failed",
	},
	KindOutOfStock: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "insufficient stock",
	},
	KindNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	KindGatewayUnavailable: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: "dependency unavailable",
	},
	KindPartialFailure: {
		HTTPStatus:    http.StatusBadGateway,
		PublicMessage: "order placed but stock was not reserved; pending reconciliation",
	},
	KindInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "internal server error",
	},
}

// MetadataFor falls back to KindInternal for unknown kinds.
func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

// Retryable reports whether repeating the same call is safe.
func Retryable(kind Kind) bool {
	return MetadataFor(kind).Retryable
}

// Error is the structured outcome of a failed use case. Order is set whenever an
// order was created before the failure.
type Error struct {
	Kind  Kind
	Op    string
	Order *domorder.Order
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Order != nil {
		msg += fmt.Sprintf(" (order %d %s)", e.Order.ID, e.Order.Number)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Validation builds a KindValidation error from a message.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: errors.New(msg)}
}

// KindOf extracts the Kind carried by err. Plain errors classify as KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind
	}
	return KindInternal
}

// OrderOf returns the created order attached to err, if any.
func OrderOf(err error) *domorder.Order {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Order
	}
	return nil
}

// FromGateway maps a gateway failure onto the taxonomy. Timeouts and transport
// failures are GatewayUnavailable; the caller decides whether a prior side effect
// upgrades that to PartialFailure.
func FromGateway(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr
	}
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, identity.ErrNotFound),
		errors.Is(err, reconciliation.ErrNotFound):
		return NewError(KindNotFound, op, err)
	case errors.Is(err, domorder.ErrRejected),
		errors.Is(err, domorder.ErrUnknownStatus),
		errors.Is(err, catalog.ErrInvalidCount),
		errors.Is(err, reconciliation.ErrAlreadyResolved):
		return NewError(KindValidation, op, err)
	default:
		return NewError(KindGatewayUnavailable, op, err)
	}
}
