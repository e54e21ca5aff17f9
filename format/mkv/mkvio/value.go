package mkvio

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// asciiDecoder keeps the low 7 bits of every byte. Transformers carry
// state, so every call builds a new one.
func asciiDecoder() transform.Transformer {
	return transform.Chain(charmap.ISO8859_1.NewDecoder(), runes.Map(func(r rune) rune {
		return r & 0x7f
	}))
}

// DateEpoch is the origin of EBML dates.
var DateEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

func decodeUint(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, fmt.Errorf("%w: %d byte integer", ErrStructure, len(b))
	}
	return pack(len(b), b), nil
}

func decodeInt(b []byte) (int64, error) {
	v, err := decodeUint(b)
	if err != nil || len(b) == 0 {
		return 0, err
	}
	shift := uint(64 - 8*len(b))
	return int64(v<<shift) >> shift, nil
}

// decodeValue sets el.Value from the leaf content b.
func decodeValue(el *Element, b []byte, log *zerolog.Logger) (err error) {
	switch el.Type {
	case ElementTypeUint:
		el.Value, err = decodeUint(b)
	case ElementTypeInt:
		el.Value, err = decodeInt(b)
	case ElementTypeFloat:
		switch len(b) {
		case 4:
			el.Value = float64(math.Float32frombits(uint32(pack(4, b))))
		case 8:
			el.Value = math.Float64frombits(pack(8, b))
		default:
			log.Warn().Str("element", el.Name).Int64("offset", el.TagStart).Int("width", len(b)).
				Msg("cannot read float of this width, falling back to 0")
			el.Value = float64(0)
		}
	case ElementTypeString:
		var text []byte
		if text, _, err = transform.Bytes(asciiDecoder(), b); err == nil {
			el.Value = string(text)
		}
	case ElementTypeUnicode:
		el.Value, err = decodeText(unicode.UTF8.NewDecoder().Bytes(b))
	case ElementTypeDate:
		if len(b) < 8 {
			log.Warn().Str("element", el.Name).Int64("offset", el.TagStart).Int("width", len(b)).
				Msg("date is not 8 bytes wide, reading it as a shorter signed integer")
		}
		var ns int64
		if ns, err = decodeInt(b); err == nil {
			el.Value = DateEpoch.Add(time.Duration(ns))
		}
	case ElementTypeBinary, ElementTypeUnknown:
		el.Value = b
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, el.Type)
	}
	return
}

func decodeText(b []byte, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return string(b), nil
}
