package mapping

import (
	"errors"
	"net/http"

	"github.com/eslsoft/depictor/internal/entity"
)

// ErrorBody is the JSON body of a failed request.
type ErrorBody struct {
	Error string `json:"error"`
	// Code is the remote API error code, when the failure came from a remote API.
	Code     string                  `json:"code,omitempty"`
	Expected string                  `json:"expected_data_value_type,omitempty"`
	Actual   string                  `json:"actual_data_value_type,omitempty"`
	Report   *entity.PromotionReport `json:"report,omitempty"`
}

// ToHTTPError maps a usecase error onto a status code and response body.
func ToHTTPError(err error) (int, ErrorBody) {
	body := ErrorBody{Error: err.Error()}

	var promotion *entity.PromotionError
	if errors.As(err, &promotion) {
		body.Report = promotion.Report
	}

	var (
		validation *entity.ValidationError
		valueType  *entity.UnexpectedValueTypeError
		remote     *entity.RemoteError
		authz      *entity.AuthorizationError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, body
	case errors.As(err, &valueType):
		body.Expected, body.Actual = valueType.Expected, valueType.Actual
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, entity.ErrStaleQualifier):
		body.Error = entity.ErrStaleQualifier.Error()
		body.Code = "no-such-qualifier"
		return http.StatusConflict, body
	case errors.As(err, &remote):
		body.Code = remote.Code
		return http.StatusBadGateway, body
	case errors.As(err, &authz):
		if errors.Is(err, entity.ErrNotLoggedIn) {
			return http.StatusUnauthorized, body
		}
		return http.StatusForbidden, body
	case errors.Is(err, entity.ErrStatementNotFound),
		errors.Is(err, entity.ErrEntityNotFound),
		errors.Is(err, entity.ErrImageNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, entity.ErrInvalidStatementID), errors.Is(err, entity.ErrInvalidUserName):
		return http.StatusBadRequest, body
	default:
		return http.StatusInternalServerError, body
	}
}
