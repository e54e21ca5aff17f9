package mkv

import (
	"github.com/deepch/webmio/format/mkv/mkvio"
	"github.com/rs/zerolog"
)

const (
	ExtWebM     = ".webm"
	ExtMatroska = ".mkv"
)

// Probe reports whether b starts with an EBML header.
func Probe(b []byte) bool {
	return len(b) >= 4 && b[0] == 0x1a && b[1] == 0x45 && b[2] == 0xdf && b[3] == 0xa3
}

// DocType returns the DocType declared by the EBML header at the start of b,
// usually "webm" or "matroska".
func DocType(b []byte) (string, error) {
	if !Probe(b) {
		return "", mkvio.ErrParse
	}
	dec := mkvio.NewDecoder(mkvio.WithLogger(zerolog.Nop()))
	events, err := dec.Decode(b)
	for _, el := range events {
		switch {
		case el.ID == mkvio.ElementDocType.ID:
			return el.Text(), nil
		case el.ID == mkvio.ElementEBML.ID && el.IsEnd:
			return "", mkvio.ErrNotFound
		}
	}
	if err != nil {
		return "", err
	}
	return "", mkvio.ErrUnexpectedEOF
}

// Ext returns the file extension matching a DocType.
func Ext(docType string) string {
	if docType == "webm" {
		return ExtWebM
	}
	return ExtMatroska
}
