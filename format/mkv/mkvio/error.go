package mkvio

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParse           = errors.New("Parse error")
	ErrUnexpectedEOF   = errors.New("Unexpected EOF")
	ErrInputRange      = errors.New("Input range error")
	ErrStructure       = errors.New("Structural error")
	ErrUnsupportedType = errors.New("Unsupported value type")
)

// RangeError reports invalid bounds requested from a ChunkSet.
type RangeError struct {
	Begin, End, Len int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("mkvio: invalid range [%d,%d) of %d bytes", e.Begin, e.End, e.Len)
}

func (e *RangeError) Unwrap() error {
	return ErrInputRange
}

// ParseError reports a decode failure at an absolute stream offset.
type ParseError struct {
	Debug  string
	Offset int64
	prev   *ParseError
	orig   error
}

func (a *ParseError) Error() string {
	s := []string{}
	for p := a; p != nil; p = p.prev {
		s = append(s, fmt.Sprintf("%s:%d", p.Debug, p.Offset))
		if p.prev == nil && p.orig != nil {
			s = append(s, p.orig.Error())
		}
	}
	return "mkvio: parse error: " + strings.Join(s, ",")
}

func (a *ParseError) Unwrap() error {
	for p := a; p != nil; p = p.prev {
		if p.prev == nil {
			return p.orig
		}
	}
	return nil
}

func parseErr(debug string, offset int64, prev error) error {
	_prev, _ := prev.(*ParseError)
	if _prev != nil {
		prev = nil
	}
	return &ParseError{
		Debug:  debug,
		Offset: offset,
		prev:   _prev,
		orig:   prev,
	}
}
