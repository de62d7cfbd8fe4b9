package core

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorUnauthorized           = "REDEEM_UNAUTHORIZED"
	ErrorCapacityNotIncreasing  = "REDEEM_CAPACITY_NOT_INCREASING"
	ErrorInvalidCapacity        = "REDEEM_INVALID_CAPACITY"
	ErrorCatalogFull            = "REDEEM_CATALOG_FULL"
	ErrorEmptyField             = "REDEEM_EMPTY_FIELD"
	ErrorFieldTooLong           = "REDEEM_FIELD_TOO_LONG"
	ErrorIndexOutOfRange        = "REDEEM_INDEX_OUT_OF_RANGE"
	ErrorInvalidRate            = "REDEEM_INVALID_RATE"
	ErrorInvalidQuantity        = "REDEEM_INVALID_QUANTITY"
	ErrorInvalidAmount          = "REDEEM_INVALID_AMOUNT"
	ErrorUnknownItemType        = "REDEEM_UNKNOWN_ITEM_TYPE"
	ErrorRateNotConfigured      = "REDEEM_RATE_NOT_CONFIGURED"
	ErrorArithmeticOverflow     = "REDEEM_ARITHMETIC_OVERFLOW"
	ErrorInconsistentSettlement = "REDEEM_INCONSISTENT_SETTLEMENT"
	ErrorCatalogNotFound        = "REDEEM_CATALOG_NOT_FOUND"
	ErrorCatalogExists          = "REDEEM_CATALOG_EXISTS"
	ErrorCatalogConflict        = "REDEEM_CATALOG_CONFLICT"
	ErrorInvalidMetadata        = "REDEEM_INVALID_METADATA"
	ErrorLedgerRejected         = "REDEEM_LEDGER_REJECTED"
	ErrorPartialIssuance        = "REDEEM_PARTIAL_ISSUANCE"
	ErrorBadInput               = "REDEEM_BAD_INPUT"
	ErrorInternal               = "REDEEM_INTERNAL_ERROR"
)

var errorCategories = map[string]goerrors.Category{
	ErrorUnauthorized:           goerrors.CategoryAuthz,
	ErrorCapacityNotIncreasing:  goerrors.CategoryBadInput,
	ErrorInvalidCapacity:        goerrors.CategoryBadInput,
	ErrorCatalogFull:            goerrors.CategoryConflict,
	ErrorEmptyField:             goerrors.CategoryValidation,
	ErrorFieldTooLong:           goerrors.CategoryValidation,
	ErrorIndexOutOfRange:        goerrors.CategoryBadInput,
	ErrorInvalidRate:            goerrors.CategoryBadInput,
	ErrorInvalidQuantity:        goerrors.CategoryBadInput,
	ErrorInvalidAmount:          goerrors.CategoryBadInput,
	ErrorUnknownItemType:        goerrors.CategoryNotFound,
	ErrorRateNotConfigured:      goerrors.CategoryOperation,
	ErrorArithmeticOverflow:     goerrors.CategoryBadInput,
	ErrorInconsistentSettlement: goerrors.CategoryInternal,
	ErrorCatalogNotFound:        goerrors.CategoryNotFound,
	ErrorCatalogExists:          goerrors.CategoryConflict,
	ErrorCatalogConflict:        goerrors.CategoryConflict,
	ErrorInvalidMetadata:        goerrors.CategoryBadInput,
	ErrorLedgerRejected:         goerrors.CategoryExternal,
	ErrorPartialIssuance:        goerrors.CategoryInternal,
	ErrorBadInput:               goerrors.CategoryBadInput,
	ErrorInternal:               goerrors.CategoryInternal,
}

// NewRedeemError builds the error envelope for one of the Error* text codes.
func NewRedeemError(textCode string, message string, metadata map[string]any) *goerrors.Error {
	category, ok := errorCategories[textCode]
	if !ok {
		category = goerrors.CategoryInternal
	}
	err := goerrors.New(message, category).WithTextCode(textCode)
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	if textCode == ErrorInconsistentSettlement || textCode == ErrorPartialIssuance {
		err = err.WithSeverity(goerrors.SeverityCritical)
	}
	return ensureRedeemErrorEnvelope(err)
}

// KindOf returns the text code carried by err, or an empty string when err
// does not carry a redeem error envelope.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		return richErr.TextCode
	}
	return ""
}

func IsKind(err error, textCode string) bool {
	return err != nil && KindOf(err) == textCode
}

func redeemErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureRedeemErrorEnvelope(richErr)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ensureRedeemErrorEnvelope(goerrors.Wrap(err, goerrors.CategoryOperation, err.Error()))
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "catalog") && strings.Contains(msg, "not found"):
		return NewRedeemError(ErrorCatalogNotFound, err.Error(), nil)
	case strings.Contains(msg, "version conflict"), strings.Contains(msg, "concurrent update"):
		return NewRedeemError(ErrorCatalogConflict, err.Error(), nil)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "mismatch"):
		return NewRedeemError(ErrorBadInput, err.Error(), nil)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureRedeemErrorEnvelope(mapped)
}

func ensureRedeemErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = redeemHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultRedeemTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultRedeemTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorCatalogNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorUnauthorized
	case goerrors.CategoryConflict:
		return ErrorCatalogConflict
	case goerrors.CategoryExternal:
		return ErrorLedgerRejected
	default:
		return ErrorInternal
	}
}

func redeemHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
