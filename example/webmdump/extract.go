package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deepch/webmio/format/mkv/mkvio"
	"github.com/deepch/webmio/utils/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/urfave/cli"
)

func extractCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.NewExitError("extract needs an input file", 2)
	}
	in, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "open input")
	}
	defer in.Close()

	dir := c.String("out")
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	if !c.Bool("force") {
		st, err := in.Stat()
		if err != nil {
			return errors.Wrap(err, "stat input")
		}
		if err = checkFreeSpace(dir, uint64(st.Size())); err != nil {
			return err
		}
	}

	x := &extractor{name: c.String("name"), dir: dir}
	if err = newDocument(in).ParseAll(x.Read); err != nil {
		return errors.Wrap(err, "decode")
	}
	if x.err != nil {
		return x.err
	}
	logger.Get().Info().Str("element", x.name).Int("files", len(x.files)).Str("dir", dir).Msg("extracted")
	return nil
}

// checkFreeSpace fails when dir cannot hold need more bytes.
func checkFreeSpace(dir string, need uint64) error {
	usage, err := disk.Usage(dir)
	if err != nil {
		return errors.Wrapf(err, "disk usage of %s", dir)
	}
	if usage.Free < need {
		return errors.Errorf("%s has %d bytes free, input is %d bytes (use --force to skip)", dir, usage.Free, need)
	}
	return nil
}

// extractor writes the content of every leaf called name to its own file.
type extractor struct {
	name  string
	dir   string
	files []string
	err   error
}

func (x *extractor) Read(el mkvio.Element) {
	if x.err != nil || el.IsEnd || el.IsMaster() || el.Name != x.name {
		return
	}
	path := x.path(el)
	if err := os.WriteFile(path, el.Data, 0o644); err != nil {
		x.err = errors.Wrap(err, "write element")
		return
	}
	x.files = append(x.files, path)
}

// path names files after the element offset and falls back to a random
// name when that file already exists.
func (x *extractor) path(el mkvio.Element) string {
	path := filepath.Join(x.dir, fmt.Sprintf("%s-%d.bin", el.Name, el.TagStart))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	return filepath.Join(x.dir, fmt.Sprintf("%s-%s.bin", el.Name, uuid.NewString()))
}
