package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/groundswell/listcutter/internal/types"
)

// FaultKind classifies a store fault as a short snake_case kind string for
// the 500 response body. Derived from the fault's type name, never its
// message, so internal detail (hosts, SQL, constraint names) cannot leak.
func FaultKind(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, types.ErrUnknownActivity):
		return "unknown_activity"
	}

	typeName := fmt.Sprintf("%T", unwrapAll(err))
	return snakeCase(typeName)
}

// unwrapAll walks to the innermost error so the kind reflects the original
// fault, not the fmt.Errorf wrappers the store adds.
func unwrapAll(err error) error {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}

// snakeCase converts a Go type name like "*pq.Error" to "pq_error".
func snakeCase(typeName string) string {
	typeName = strings.TrimLeft(typeName, "*")
	typeName = strings.ReplaceAll(typeName, ".", "_")

	var sb strings.Builder
	for i, r := range typeName {
		if unicode.IsUpper(r) {
			if i > 0 && typeName[i-1] != '_' {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return strings.ReplaceAll(sb.String(), "__", "_")
}
