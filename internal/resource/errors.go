package resource

import (
	"errors"
	"fmt"
)

// ErrDecode is returned when the server answers with a body that is not a listing
var ErrDecode = errors.New("malformed listing response")

// StatusError is returned for non-2xx responses
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// IsStatus reports whether err is a StatusError with the given code
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
