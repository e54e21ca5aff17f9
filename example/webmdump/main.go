package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/deepch/webmio/format/mkv"
	"github.com/deepch/webmio/format/mkv/mkvio"
	"github.com/deepch/webmio/format/mkv/mkvws"
	"github.com/deepch/webmio/utils/config"
	"github.com/deepch/webmio/utils/logger"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var settings config.Settings

func main() {
	app := cli.NewApp()
	app.Name = "webmdump"
	app.Usage = "Inspect WebM and Matroska streams element by element"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Read size in bytes, overrides WEBM_CHUNK_SIZE",
		},
		cli.BoolFlag{
			Name:  "include-binary",
			Usage: "Include binary element values in JSON output, overrides WEBM_INCLUDE_BINARY",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "trace, debug, info, warn or error, overrides LOG_LEVEL",
		},
	}
	app.Before = setup
	app.Commands = []cli.Command{
		cli.Command{
			Name:      "events",
			Usage:     "Print every element event",
			ArgsUsage: "[file|-]",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "json, j",
					Usage: "One JSON object per line",
				},
			},
			Action: eventsCommand,
		},
		cli.Command{
			Name:      "info",
			Usage:     "Print segment info, tracks and seekability",
			ArgsUsage: "[file|-]",
			Action:    infoCommand,
		},
		cli.Command{
			Name:      "extract",
			Usage:     "Write the content of binary elements to files",
			ArgsUsage: "file",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, n",
					Value: "CodecPrivate",
					Usage: "Element name to extract",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: ".",
					Usage: "Output directory",
				},
				cli.BoolFlag{
					Name:  "force",
					Usage: "Skip the free space check",
				},
			},
			Action: extractCommand,
		},
		cli.Command{
			Name:  "serve",
			Usage: "Decode streams pushed over websocket",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen, l",
					Usage: "Listen address, overrides WEBM_LISTEN",
				},
			},
			Action: serveCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Get().Error().Err(err).Msg("webmdump failed")
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	opt := logger.FromEnv()
	if c.GlobalIsSet("log-level") {
		opt.Level = c.GlobalString("log-level")
	}
	logger.Init(opt)

	s, err := config.Load(config.New())
	if err != nil {
		return err
	}
	if c.GlobalIsSet("chunk-size") {
		s.ChunkSize = c.GlobalInt("chunk-size")
	}
	if c.GlobalIsSet("include-binary") {
		s.IncludeBinary = c.GlobalBool("include-binary")
	}
	settings = s
	return settings.Validate()
}

func openInput(c *cli.Context) (io.ReadCloser, error) {
	name := c.Args().First()
	if name == "" || name == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "open input")
	}
	return f, nil
}

func newDocument(r io.Reader) *mkvio.Document {
	doc := mkvio.InitDocument(r)
	doc.ChunkSize = settings.ChunkSize
	return doc
}

func eventsCommand(c *cli.Context) error {
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	asJSON := c.Bool("json")
	enc := json.NewEncoder(out)
	var werr error
	err = newDocument(in).ParseAll(func(el mkvio.Element) {
		if werr != nil {
			return
		}
		if asJSON {
			werr = enc.Encode(mkvws.NewEvent(el, settings.IncludeBinary))
			return
		}
		_, werr = fmt.Fprintln(out, formatEvent(el))
	})
	if err != nil {
		return errors.Wrap(err, "decode")
	}
	return errors.Wrap(werr, "write")
}

func formatEvent(el mkvio.Element) string {
	indent := ""
	if el.Level > 0 {
		indent = strings.Repeat("  ", el.Level)
	}
	switch {
	case el.IsEnd:
		return fmt.Sprintf("%s/%s @%d", indent, el.Name, el.TagStart)
	case el.IsMaster():
		if el.UnknownSize {
			return fmt.Sprintf("%s%s @%d size=unknown", indent, el.Name, el.TagStart)
		}
		return fmt.Sprintf("%s%s @%d size=%d", indent, el.Name, el.TagStart, el.DataSize)
	case el.Type == mkvio.ElementTypeBinary || el.Type == mkvio.ElementTypeUnknown:
		return fmt.Sprintf("%s%s(0x%x) @%d size=%d", indent, el.Name, el.ID, el.TagStart, el.DataSize)
	}
	return fmt.Sprintf("%s%s @%d size=%d value=%v", indent, el.Name, el.TagStart, el.DataSize, el.Value)
}

func infoCommand(c *cli.Context) error {
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	ins := mkv.NewInspector()
	if err = newDocument(in).ParseAll(ins.Read); err != nil {
		return errors.Wrap(err, "decode")
	}

	fmt.Printf("doctype:   %s\n", ins.DocType)
	fmt.Printf("duration:  %v (computed %v)\n", ins.Duration(), ins.ComputedDuration())
	fmt.Printf("muxer:     %s / %s\n", ins.Info.MuxingApp, ins.Info.WritingApp)
	fmt.Printf("metadata:  %d bytes\n", ins.MetadataSize)
	fmt.Printf("clusters:  %d, blocks: %d, bad blocks: %d\n", ins.Clusters, ins.Blocks, ins.BadBlocks)
	fmt.Printf("seekable:  %v (seekhead %v, cues %v)\n", ins.Seekable(), ins.HasSeekHead, ins.HasCues)
	for _, s := range ins.Streams {
		switch {
		case s.IsVideo():
			fmt.Printf("track %d:   video %s %dx%d, %d blocks, %d keyframes\n",
				s.Number, s.CodecID, s.Width, s.Height, s.Blocks, s.Keyframes)
		case s.IsAudio():
			fmt.Printf("track %d:   audio %s %vHz %dch, %d blocks\n",
				s.Number, s.CodecID, s.SamplingFrequency, s.Channels, s.Blocks)
		default:
			fmt.Printf("track %d:   type %d %s, %d blocks\n", s.Number, s.Type, s.CodecID, s.Blocks)
		}
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	listen := settings.Listen
	if c.IsSet("listen") {
		listen = c.String("listen")
	}
	http.Handle("/decode", mkvws.NewHandler(settings.IncludeBinary))
	logger.Get().Info().Str("listen", listen).Msg("serving websocket decoder on /decode")
	return errors.Wrap(http.ListenAndServe(listen, nil), "serve")
}
