package gateway

import (
	"errors"
	"fmt"
)

// GatewayError is a completed HTTP exchange that the gateway answered
// with a non-2xx status. Anything else (dial failure, timeout, bad JSON)
// is returned as a plain wrapped error; both kinds mean "status unknown,
// try again later", never "terminally failed".
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Body)
}

func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode >= 500
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
