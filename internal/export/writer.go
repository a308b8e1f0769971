package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jakubtomsu/raven/pkg/rscn"
	"github.com/jakubtomsu/raven/pkg/scene"
)

// Output file suffixes.
const (
	IndexExt  = ".rscn"
	BinaryExt = ".bin"
)

// OutputPath derives the index file path from a scene file path:
// the extension is replaced with ".rscn".
func OutputPath(scenePath string) (string, error) {
	if scenePath == "" {
		return "", ErrNoOutputPath
	}
	return strings.TrimSuffix(scenePath, filepath.Ext(scenePath)) + IndexExt, nil
}

// BinaryPath returns the binary file path for an index file path.
func BinaryPath(indexPath string) string {
	return indexPath + BinaryExt
}

// ExportFile exports s and writes the index and binary files. An empty out
// derives the path from s.Path; if neither is set nothing is done.
func (e *Exporter) ExportFile(ctx context.Context, s *scene.Scene, out string) (*Result, error) {
	if out == "" {
		if s == nil {
			return nil, ErrNoOutputPath
		}
		var err error
		if out, err = OutputPath(s.Path); err != nil {
			return nil, err
		}
	}

	res, err := e.Export(ctx, s)
	if err != nil {
		return nil, err
	}
	if err := WriteFiles(res.Container, out); err != nil {
		return nil, err
	}
	e.log.Info("files written",
		zap.String("index", out),
		zap.String("binary", BinaryPath(out)),
		zap.Int("bytes", res.Container.Layout().End()),
	)
	return res, nil
}

// WriteFiles writes the binary and index artifacts of c next to indexPath.
// Both are staged in temporary files in the destination directory and only
// renamed into place once both are complete.
func WriteFiles(c *rscn.Container, indexPath string) (err error) {
	if indexPath == "" {
		return ErrNoOutputPath
	}

	bin, err := stage(BinaryPath(indexPath), c.WriteBinary)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, bin.discard())
		}
	}()

	idx, err := stage(indexPath, c.WriteText)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, idx.discard())
		}
	}()

	if err = bin.commit(); err != nil {
		return err
	}
	return idx.commit()
}

// staged is a fully written temporary file waiting to be renamed.
type staged struct {
	tmp, dst  string
	committed bool
}

func stage(dst string, write func(io.Writer) error) (_ *staged, err error) {
	f, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file for %s: %w", dst, err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(f.Name()))
		}
	}()

	if err = f.Chmod(0644); err != nil {
		return nil, multierr.Append(fmt.Errorf("chmod %s: %w", dst, err), f.Close())
	}
	if err = write(f); err != nil {
		return nil, multierr.Append(fmt.Errorf("writing %s: %w", dst, err), f.Close())
	}
	if err = f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", dst, err)
	}
	return &staged{tmp: f.Name(), dst: dst}, nil
}

func (s *staged) commit() error {
	if err := os.Rename(s.tmp, s.dst); err != nil {
		return fmt.Errorf("renaming %s: %w", s.dst, err)
	}
	s.committed = true
	return nil
}

func (s *staged) discard() error {
	if s.committed {
		return nil
	}
	return os.Remove(s.tmp)
}
