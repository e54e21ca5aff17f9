package mkvws

import (
	"fmt"
	"math"

	"github.com/deepch/webmio/format/mkv/mkvio"
)

// Event is the JSON form of one element event.
type Event struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Type        string `json:"type"`
	Level       int    `json:"level"`
	IsEnd       bool   `json:"isEnd,omitempty"`
	UnknownSize bool   `json:"unknownSize,omitempty"`
	TagStart    int64  `json:"tagStart"`
	SizeStart   int64  `json:"sizeStart"`
	DataStart   int64  `json:"dataStart"`
	DataEnd     int64  `json:"dataEnd"`
	DataSize    int64  `json:"dataSize"`
	Value       any    `json:"value,omitempty"`
}

// NewEvent converts el. Binary payloads are dropped unless binary is set;
// they are base64 encoded otherwise.
func NewEvent(el mkvio.Element, binary bool) Event {
	ev := Event{
		Name:        el.Name,
		ID:          fmt.Sprintf("0x%x", el.ID),
		Type:        el.Type.String(),
		Level:       el.Level,
		IsEnd:       el.IsEnd,
		UnknownSize: el.UnknownSize,
		TagStart:    el.TagStart,
		SizeStart:   el.SizeStart,
		DataStart:   el.DataStart,
		DataEnd:     el.DataEnd,
		DataSize:    el.DataSize,
	}
	if el.IsMaster() || el.IsEnd {
		return ev
	}
	switch v := el.Value.(type) {
	case []byte:
		if binary {
			ev.Value = v
		}
	case float64:
		// encoding/json rejects non-finite numbers
		if math.IsNaN(v) || math.IsInf(v, 0) {
			ev.Value = fmt.Sprint(v)
		} else {
			ev.Value = v
		}
	default:
		ev.Value = v
	}
	return ev
}

// Reply is the text frame sent back for every binary frame.
type Reply struct {
	Session string  `json:"session"`
	Offset  int64   `json:"offset"`
	Events  []Event `json:"events"`
	Done    bool    `json:"done,omitempty"`
	Error   string  `json:"error,omitempty"`
}
