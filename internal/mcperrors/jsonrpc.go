package mcperrors

// file: internal/mcperrors/jsonrpc.go

import (
	"github.com/cockroachdb/errors"
)

// safeContextKeys are the context entries allowed into a client-visible error payload.
var safeContextKeys = map[string]struct{}{
	"uri":       {},
	"toolName":  {},
	"method":    {},
	"parameter": {},
	"kind":      {},
	"id":        {},
	"state":     {},
}

// baseOf finds the BaseError carried by any of the typed errors in err's chain.
func baseOf(err error) *BaseError {
	var (
		pe  *ParseError
		ire *InvalidRequestError
		mnf *MethodNotFoundError
		ipe *InvalidParamsError
		ve  *ValidationError
		nf  *NotFoundError
		dup *DuplicateCapabilityError
		rse *RequestSequenceError
		rue *ResourceUnavailableError
		ie  *InternalError
		be  *BaseError
	)
	switch {
	case errors.As(err, &ve):
		return &ve.BaseError
	case errors.As(err, &nf):
		return &nf.BaseError
	case errors.As(err, &pe):
		return &pe.BaseError
	case errors.As(err, &ire):
		return &ire.BaseError
	case errors.As(err, &mnf):
		return &mnf.BaseError
	case errors.As(err, &ipe):
		return &ipe.BaseError
	case errors.As(err, &dup):
		return &dup.BaseError
	case errors.As(err, &rse):
		return &rse.BaseError
	case errors.As(err, &rue):
		return &rue.BaseError
	case errors.As(err, &ie):
		return &ie.BaseError
	case errors.As(err, &be):
		return be
	}
	return nil
}

// MapErrorToJSONRPC converts an error into a JSON-RPC code, message and optional data.
// Unknown errors become a generic internal error so causes never leak to the client.
func MapErrorToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	base := baseOf(err)
	if base == nil {
		return int(ErrInternalError), "Internal error", nil
	}

	code = int(base.Code)
	message = base.Message
	switch base.Code {
	case ErrParseError:
		message = "Parse error"
	case ErrInvalidRequest:
		if message == "" {
			message = "Invalid Request"
		}
	case ErrInternalError:
		message = "Internal error"
	}

	for k, v := range base.Context {
		if _, ok := safeContextKeys[k]; !ok {
			continue
		}
		if data == nil {
			data = make(map[string]interface{})
		}
		data[k] = v
	}
	return code, message, data
}
