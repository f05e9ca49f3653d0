package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/cart"
	"ecochain-be/internal/collection"
	"ecochain-be/internal/dashboard"
	"ecochain-be/internal/logger"
	"ecochain-be/internal/order"
	"ecochain-be/internal/product"
	"ecochain-be/internal/user"
	"ecochain-be/internal/utils"
	"ecochain-be/internal/wallet"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error         string `json:"error"`
	Field         string `json:"field,omitempty"`
	Requested     *int64 `json:"requested,omitempty"`
	Available     *int64 `json:"available,omitempty"`
	MaxRedeemable *int64 `json:"maxRedeemable,omitempty"`
}

// decode reads a JSON body into dst and runs struct validation on it.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("", "request body is required")
		}
		return apperr.Validation("", "malformed JSON: "+err.Error())
	}
	return validateStruct(dst)
}

// decodeOptional is decode for endpoints whose body may be absent. An empty
// body, chunked or not, leaves dst at its zero value.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("", "malformed JSON: "+err.Error())
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperr.Validation(fieldPath(fe), fmt.Sprintf("failed on the '%s' rule", fe.Tag()))
	}
	return apperr.Validation("", err.Error())
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	utils.WriteJSON(w, code, v)
}

func statusFor(err error) int {
	var (
		verr *apperr.ValidationError
		terr *apperr.InsufficientTokensError
		nerr *apperr.NetworkError
		aerr *apperr.AuthorizationError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.As(err, &terr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nerr):
		return http.StatusBadGateway
	case errors.As(err, &aerr):
		return http.StatusForbidden
	}

	switch {
	case errors.Is(err, cart.ErrUserNotAuthenticated),
		errors.Is(err, collection.ErrUserNotAuthenticated),
		errors.Is(err, order.ErrUserNotAuthenticated),
		errors.Is(err, dashboard.ErrUserNotAuthenticated),
		errors.Is(err, wallet.ErrUserNotAuthorized),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, collection.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, collection.ErrInvalidTransition),
		errors.Is(err, collection.ErrNotSettleable),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOutOfStock),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict

	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrProductRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError maps err onto a status code and a JSON body. Unknown errors are
// logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	body := errorBody{Error: err.Error()}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	var terr *apperr.InsufficientTokensError
	if errors.As(err, &terr) {
		body.Requested = &terr.Requested
		body.Available = &terr.Available
		body.MaxRedeemable = &terr.MaxRedeemable
	}

	if code == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		body = errorBody{Error: http.StatusText(code)}
	}
	if code == http.StatusBadGateway {
		body = errorBody{Error: "upstream service unavailable"}
	}

	writeJSON(w, code, body)
}
