package plotter

import (
	"errors"

	"github.com/aescanero/dago-levelset/internal/eval/expr"
)

// ErrInvalidRequest is returned for malformed requests and region conditions.
var ErrInvalidRequest = errors.New("plotter: invalid request")

// KindInvalidRequest and KindInternal complement the expression error kinds.
const (
	KindInvalidRequest = "invalid_request"
	KindInternal       = "internal"
)

// Kind classifies a Handle error for reporting
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if k := expr.Kind(err); k != "" {
		return k
	}
	if errors.Is(err, ErrInvalidRequest) {
		return KindInvalidRequest
	}
	return KindInternal
}
