package wsjtx

import "errors"

var (
	ErrDatagramTooShort  = errors.New("datagram too short")
	ErrBadMagic          = errors.New("bad magic number")
	ErrUnsupportedSchema = errors.New("unsupported schema")
	ErrDeserialization   = errors.New("deserialization failed")
	ErrUnencodable       = errors.New("message cannot be encoded")
)
