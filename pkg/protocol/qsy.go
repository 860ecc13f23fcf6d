package protocol

import (
	"strconv"
	"strings"

	"github.com/dougsko/rigsync/pkg/rigmode"
)

// QSYRequest is a parsed bandmap click
type QSYRequest struct {
	Frequency float64
	Mode      rigmode.CoarseMode
}

// BadRequestError reports a malformed QSY path
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

// ParseQSYPath parses "/14030000/cw" into a QSYRequest
func ParseQSYPath(path string) (*QSYRequest, error) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 2 {
		return nil, &BadRequestError{Reason: "expected /<freq>/<mode>"}
	}

	freq, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return nil, &BadRequestError{Reason: "frequency must be a positive integer"}
	}

	mode, ok := rigmode.ParseCoarseMode(parts[1])
	if !ok {
		return nil, &BadRequestError{Reason: "invalid mode"}
	}

	return &QSYRequest{
		Frequency: float64(freq),
		Mode:      mode,
	}, nil
}
