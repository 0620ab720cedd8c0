package academyapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed call so handlers can react without parsing status codes.
type Kind int

const (
	KindGeneric Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInvalid
)

// String names the kind for logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	}
	return "generic"
}

func kindOf(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return KindConflict
	case http.StatusBadRequest:
		return KindInvalid
	}
	return KindGeneric
}

// Error is a non-2xx answer from the academy API.
type Error struct {
	Status     int
	StatusText string
	Body       string
	Kind       Kind
}

// Error formats as "<status> <statusText>: <body>".
func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.StatusText, e.Body)
}

// Detail returns the user-facing message carried by the body.
// It prefers {"detail": ...}, then field errors such as {"username": ["taken"]},
// then the raw error text.
func (e *Error) Detail() string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(e.Body), &obj); err != nil {
		var list []string
		if json.Unmarshal([]byte(e.Body), &list) == nil && len(list) > 0 {
			return strings.Join(list, " ")
		}
		return e.Error()
	}
	if raw, ok := obj["detail"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		if msg := fieldMessage(obj[k]); msg != "" {
			if k == "non_field_errors" {
				parts = append(parts, msg)
			} else {
				parts = append(parts, k+": "+msg)
			}
		}
	}
	if len(parts) == 0 {
		return e.Error()
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(raw json.RawMessage) string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, " ")
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

// AsError unwraps err into an *Error.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func hasKind(err error, k Kind) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == k
}

// IsUnauthorized reports a 401 from the academy API.
func IsUnauthorized(err error) bool { return hasKind(err, KindUnauthorized) }

// IsForbidden reports a 403 from the academy API.
func IsForbidden(err error) bool { return hasKind(err, KindForbidden) }

// IsNotFound reports a 404 from the academy API.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsConflict reports a 409 or 412 from the academy API.
func IsConflict(err error) bool { return hasKind(err, KindConflict) }

// Message returns the text to show a user for any error from this package.
func Message(err error) string {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Detail()
	}
	return err.Error()
}
