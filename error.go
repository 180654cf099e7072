// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/muxtree/blob/master/LICENSE.txt.

package muxtree

import (
	"errors"
	"strings"
)

var (
	ErrInvalidRoute   = errors.New("invalid route")
	ErrDuplicateParam = errors.New("duplicate parameter")
	ErrInvalidMethod  = errors.New("invalid method")
	ErrFrozen         = errors.New("router is frozen")
	ErrInvalidConfig  = errors.New("invalid config")
)

// PatternError reports a malformed route pattern, such as an unbalanced brace or a
// wildcard that is not the last element of the pattern.
type PatternError struct {
	// Err is the underlying cause, if any (e.g. a regexp compilation error).
	Err error
	// Pattern is the pattern being registered.
	Pattern string
	// Reason describes what is wrong with the pattern.
	Reason string
}

func (e *PatternError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid route: ")
	sb.WriteString(e.Reason)
	sb.WriteString(" in pattern ")
	sb.WriteString(e.Pattern)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the sentinel value [ErrInvalidRoute] along with the underlying cause.
func (e *PatternError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidRoute, e.Err}
	}
	return []error{ErrInvalidRoute}
}

// DuplicateParamError reports a pattern that declares the same parameter name twice.
type DuplicateParamError struct {
	// Pattern is the pattern being registered.
	Pattern string
	// Param is the repeated parameter name.
	Param string
}

func (e *DuplicateParamError) Error() string {
	return "duplicate parameter: '" + e.Param + "' is declared more than once in pattern " + e.Pattern
}

// Unwrap returns the sentinel value [ErrDuplicateParam].
func (e *DuplicateParamError) Unwrap() error {
	return ErrDuplicateParam
}
