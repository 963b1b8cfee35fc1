// Package errors normalizes errors into short class names for metric tags and notifications.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/research"
	apperrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/errors"
)

// Well-known classes.
const (
	ClassTimeout  = "timeout"
	ClassCanceled = "canceled"
	ClassParse    = "parse_error"
	ClassNetwork  = "network"
	ClassUnknown  = "unknown"
)

// Classify returns a normalized error class suitable for tagging metrics and logs.
// Known failure kinds get stable names; anything else falls back to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case goerrors.Is(err, context.DeadlineExceeded):
		return ClassTimeout
	case goerrors.Is(err, context.Canceled):
		return ClassCanceled
	}

	var parseErr *research.ParseError
	if goerrors.As(err, &parseErr) {
		return ClassParse + "_" + string(parseErr.Kind)
	}

	if code := apperrors.GetCode(err); code != "" {
		return string(code)
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassNetwork
	}

	return typeName(err)
}

func typeName(err error) string {
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ClassUnknown
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return ClassUnknown
	}
	return name
}
