// Package mkvws decodes WebM streams pushed over a websocket.
//
// The client sends the stream as binary frames, in order. Each frame is fed to
// one mkvio.Decoder and answered with a JSON text frame listing the element
// events it completed. A text frame "end" declares the end of the stream and
// is answered with a final reply. The connection is closed after a decode
// error, which is reported in the reply.
package mkvws

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/deepch/webmio/format/mkv/mkvio"
	"github.com/deepch/webmio/utils/logger"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"
)

// EndOfStream is the text frame marking the end of the pushed stream.
const EndOfStream = "end"

// Handler upgrades requests and runs one Session per connection.
type Handler struct {
	IncludeBinary bool
	Options       []mkvio.Option
	Log           zerolog.Logger
}

func NewHandler(includeBinary bool, opts ...mkvio.Option) *Handler {
	return &Handler{
		IncludeBinary: includeBinary,
		Options:       opts,
		Log:           logger.Named("mkvws"),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		h.Log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	s := NewSession(conn, h.IncludeBinary, h.Options...)
	log := h.Log.With().Str("session", s.dec.ID.String()).Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("session started")
	if err = s.Run(); err != nil {
		log.Warn().Err(err).Int64("offset", s.dec.Offset()).Msg("session failed")
		return
	}
	log.Info().Int64("offset", s.dec.Offset()).Msg("session closed")
}

// Session is the server side of one decode connection.
type Session struct {
	conn          net.Conn
	dec           *mkvio.Decoder
	includeBinary bool
}

func NewSession(conn net.Conn, includeBinary bool, opts ...mkvio.Option) *Session {
	return &Session{
		conn:          conn,
		dec:           mkvio.NewDecoder(opts...),
		includeBinary: includeBinary,
	}
}

// Decoder returns the decoder fed by the session.
func (s *Session) Decoder() *mkvio.Decoder {
	return s.dec
}

// Run serves frames until the peer closes, the stream ends or decoding
// fails. A clean close by the peer returns nil.
func (s *Session) Run() error {
	for {
		data, op, err := wsutil.ReadClientData(s.conn)
		if err != nil {
			var closed wsutil.ClosedError
			if errors.As(err, &closed) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch op {
		case ws.OpBinary:
			events, derr := s.dec.Decode(data)
			if err = s.reply(events, false, derr); err != nil {
				return err
			}
			if derr != nil {
				return derr
			}
		case ws.OpText:
			if string(data) != EndOfStream {
				continue
			}
			cerr := s.dec.Close()
			if err = s.reply(nil, true, cerr); err != nil {
				return err
			}
			return cerr
		}
	}
}

func (s *Session) reply(events []mkvio.Element, done bool, derr error) error {
	r := Reply{
		Session: s.dec.ID.String(),
		Offset:  s.dec.Offset(),
		Events:  make([]Event, 0, len(events)),
		Done:    done,
	}
	for _, el := range events {
		r.Events = append(r.Events, NewEvent(el, s.includeBinary))
	}
	if derr != nil {
		r.Error = derr.Error()
	}

	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return wsutil.WriteServerText(s.conn, b)
}
