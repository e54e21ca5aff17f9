package mkvio

import (
	"fmt"

	"github.com/deepch/webmio/utils/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type state uint8

const (
	stateTag state = iota + 1
	stateSize
	stateContent
)

func (s state) String() string {
	switch s {
	case stateTag:
		return "tag"
	case stateSize:
		return "size"
	case stateContent:
		return "content"
	}
	return "invalid"
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithSchema makes the decoder resolve element IDs with s instead of
// DefaultSchema.
func WithSchema(s Schema) Option {
	return func(d *Decoder) {
		d.schema = s
	}
}

// WithLogger replaces the "mkvio" component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// Decoder is a resumable EBML decoder. Chunks of one stream are passed to
// Decode as they arrive, and every call returns the element events completed
// since the previous call.
//
// A Decoder is not safe for concurrent use. After Decode returns an error the
// decoder is unusable and returns the same error forever.
type Decoder struct {
	ID uuid.UUID // session id, attached to every log line

	schema Schema
	log    zerolog.Logger

	buf    ChunkSet
	stack  []*Element // open elements, innermost last
	state  state
	cursor int   // position in buf
	total  int64 // absolute position of buf[cursor]
	events []Element
	err    error
}

// NewDecoder returns a decoder positioned at the start of a stream.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		ID:     uuid.New(),
		schema: DefaultSchema,
		log:    logger.Named("mkvio"),
		state:  stateTag,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("session", d.ID.String()).Logger()
	return d
}

// Decode appends chunks to the pending input and decodes as far as the data
// allows. Incomplete tags, sizes and leaf values are kept for the next call.
// Chunks must not be modified afterwards, leaf Data may alias them.
func (d *Decoder) Decode(chunks ...[]byte) ([]Element, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.buf.Append(chunks...)

	err := d.run()

	events := d.events
	d.events = nil
	if err != nil {
		d.err = err
		d.log.Error().Err(err).Int64("offset", d.total).Msg("decode failed")
		return events, err
	}
	d.log.Debug().
		Int("events", len(events)).
		Int("buffered", d.buf.Len()).
		Int64("offset", d.total).
		Int("depth", len(d.stack)).
		Stringer("state", d.state).
		Msg("decoded")
	return events, nil
}

func (d *Decoder) run() error {
	for d.cursor < d.buf.Len() || d.state == stateContent {
		var ok bool
		var err error
		switch d.state {
		case stateTag:
			ok, err = d.readTag()
		case stateSize:
			ok, err = d.readSize()
		case stateContent:
			ok, err = d.readContent()
		}
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

func (d *Decoder) top() *Element {
	return d.stack[len(d.stack)-1]
}

func (d *Decoder) pop() {
	d.stack[len(d.stack)-1] = nil
	d.stack = d.stack[:len(d.stack)-1]
}

func (d *Decoder) emit(el Element) {
	if e := d.log.Trace(); e.Enabled() {
		e.Str("element", el.Name).Int64("offset", el.TagStart).Bool("end", el.IsEnd).Msg("element")
	}
	d.events = append(d.events, el)
}

// closeTop emits the end event of the innermost element and pops it.
func (d *Decoder) closeTop() {
	end := *d.top()
	end.IsEnd = true
	d.emit(end)
	d.pop()
}

func (d *Decoder) readTag() (bool, error) {
	tag, ok, err := ReadElementID(&d.buf, d.cursor)
	if err != nil {
		return false, parseErr("tag", d.total, err)
	}
	if !ok {
		return false, nil
	}

	n := int64(tag.Length)
	d.stack = append(d.stack, &Element{
		ElementRegister: d.schema.Resolve(uint32(tag.Value)),
		TagStart:        d.total,
		TagEnd:          d.total + n,
		SizeStart:       d.total + n,
	})

	d.cursor += tag.Length
	d.total += n
	d.state = stateSize
	return true, nil
}

func (d *Decoder) readSize() (bool, error) {
	size, ok, err := ReadElementSize(&d.buf, d.cursor)
	if err != nil {
		return false, parseErr("size", d.total, err)
	}
	if !ok {
		return false, nil
	}

	el := d.top()
	el.SizeEnd = el.SizeStart + int64(size.Length)
	el.DataStart = el.SizeEnd
	el.DataSize = size.Value
	if size.Value == UnknownSize {
		if !el.IsMaster() {
			return false, parseErr(el.Name, el.TagStart,
				fmt.Errorf("%w: unknown size on %s element", ErrStructure, el.Type))
		}
		el.DataEnd = -1
		el.UnknownSize = true
	} else {
		el.DataEnd = el.DataStart + el.DataSize
	}

	d.cursor += size.Length
	d.total += int64(size.Length)
	d.state = stateContent
	return true, nil
}

func (d *Decoder) readContent() (bool, error) {
	el := d.top()

	if el.IsMaster() {
		d.emit(*el)
		d.state = stateTag
		if el.DataSize == 0 {
			d.closeTop()
			return true, d.unwind()
		}
		return true, nil
	}

	if int64(d.buf.Len()-d.cursor) < el.DataSize {
		return false, nil
	}

	end := d.cursor + int(el.DataSize)
	data, err := d.buf.Bytes(d.cursor, end)
	if err != nil {
		return false, parseErr(el.Name, el.TagStart, err)
	}
	el.Data = data
	if err = decodeValue(el, data, &d.log); err != nil {
		return false, parseErr(el.Name, el.TagStart, err)
	}
	if err = d.buf.Drop(end); err != nil {
		return false, parseErr(el.Name, el.TagStart, err)
	}

	d.cursor = 0
	d.total += el.DataSize
	d.state = stateTag
	d.emit(*el)
	d.pop()
	return true, d.unwind()
}

// unwind closes the ancestors whose extent ends at the current position.
//
// An unknown-size ancestor is popped as soon as unwinding reaches it, without
// an end event. This is an approximation: the real end of such an element is
// the first element that cannot be its child.
func (d *Decoder) unwind() error {
	for len(d.stack) > 0 {
		top := d.top()
		if top.DataEnd < 0 {
			d.pop()
			return nil
		}
		if d.total < top.DataEnd {
			break
		}
		if !top.IsMaster() {
			return parseErr(top.Name, top.TagStart,
				fmt.Errorf("%w: parent element is not master element", ErrStructure))
		}
		d.closeTop()
	}
	return nil
}

// Offset returns the absolute position of the next undecoded byte.
func (d *Decoder) Offset() int64 {
	return d.total
}

// Buffered returns the number of bytes received but not consumed yet.
func (d *Decoder) Buffered() int {
	return d.buf.Len() - d.cursor
}

// Open returns copies of the currently open elements, outermost first.
func (d *Decoder) Open() []Element {
	open := make([]Element, len(d.stack))
	for i, el := range d.stack {
		open[i] = *el
	}
	return open
}

// Pending reports whether the decoder stopped inside an element header or
// value, i.e. the input ended in the middle of an element.
func (d *Decoder) Pending() bool {
	return d.state != stateTag || d.Buffered() > 0
}

// Close reports whether the input ended at a clean element boundary. It
// returns an ErrUnexpectedEOF error when the input stopped inside an element
// or before the end of a master element of known size. Unknown-size elements
// end with the input, and so does a known-size master left open because
// unwinding stopped at an unknown-size child.
func (d *Decoder) Close() error {
	if d.err != nil {
		return d.err
	}
	if d.Pending() {
		return parseErr("eof", d.total, ErrUnexpectedEOF)
	}
	for _, el := range d.stack {
		if !el.UnknownSize && el.DataEnd > d.total {
			return parseErr(el.Name, el.TagStart, ErrUnexpectedEOF)
		}
	}
	return nil
}

// Err returns the error that stopped the decoder, if any.
func (d *Decoder) Err() error {
	return d.err
}
