package mkvio

import (
	"errors"
	"io"
)

// DefaultChunkSize is the size of the reads issued by a Document.
const DefaultChunkSize = 64 * 1024

var ErrNotFound = errors.New("Element not found")

// Document represents a WebM file read from an io.Reader
type Document struct {
	ChunkSize int

	r       io.Reader
	dec     *Decoder
	pending []Element
	eof     bool
	err     error
}

// InitDocument creates a MKV/WebM document reading from r.
// It does not do any parsing
func InitDocument(r io.Reader, opts ...Option) *Document {
	doc := new(Document)
	doc.r = r
	doc.ChunkSize = DefaultChunkSize
	doc.dec = NewDecoder(opts...)

	return doc
}

// Decoder returns the decoder driven by the document.
func (doc *Document) Decoder() *Decoder {
	return doc.dec
}

// ParseAll parses the entire MKV/WebM document
// When an EBML/WebM element event is decoded, it calls the provided function
// and passes the newly parsed element. It returns nil at a clean end of input.
func (doc *Document) ParseAll(c func(Element)) error {
	for {
		el, err := doc.ParseElement()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		c(el)
	}
}

// FindElement parses until the first element with the given id and returns
// it. Master elements are returned at their start event.
func (doc *Document) FindElement(id uint32) (*Element, error) {
	for {
		el, err := doc.ParseElement()
		if err == io.EOF {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}

		if el.ID == id && !el.IsEnd {
			return &el, nil
		}
	}
}

// ParseElement returns the next element event, reading more input as needed.
// It returns io.EOF once the input is exhausted at an element boundary, and
// ErrUnexpectedEOF if the input stops inside an element.
func (doc *Document) ParseElement() (Element, error) {
	for len(doc.pending) == 0 {
		switch {
		case doc.err != nil:
			return Element{}, doc.err
		case doc.eof:
			return Element{}, doc.finish()
		}
		doc.fill()
	}

	el := doc.pending[0]
	doc.pending[0] = Element{}
	doc.pending = doc.pending[1:]
	return el, nil
}

// fill reads one chunk and queues the events it completes. Events decoded
// before an error are still delivered.
func (doc *Document) fill() {
	size := doc.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)

	n, err := doc.r.Read(buf)
	if n > 0 {
		events, derr := doc.dec.Decode(buf[:n])
		doc.pending = append(doc.pending, events...)
		if derr != nil {
			doc.err = derr
			return
		}
	}
	switch {
	case err == io.EOF:
		doc.eof = true
	case err != nil:
		doc.err = err
	}
}

func (doc *Document) finish() error {
	if err := doc.dec.Close(); err != nil {
		return err
	}
	return io.EOF
}
