package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/agentic-research/nomadkit/internal/docpath"
	"github.com/agentic-research/nomadkit/internal/materials"
	"github.com/agentic-research/nomadkit/internal/nomad"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
)

// source selects where a command reads its archive document from.
type source struct {
	file  string
	db    string
	mid   string
	entry string
}

func (s *source) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "Archive document JSON file")
	cmd.Flags().StringVar(&s.db, "db", "", "Materials database holding stored archives")
	cmd.Flags().StringVar(&s.mid, "mid", "", "Material id inside --db")
	cmd.Flags().StringVar(&s.entry, "entry", "", "Fetch the archive of this entry from the Archive Service")
	cmd.MarkFlagsMutuallyExclusive("file", "db", "entry")
	cmd.MarkFlagsRequiredTogether("db", "mid")
}

func (s *source) load(ctx context.Context, a *app) (docpath.Node, error) {
	switch {
	case s.file != "":
		return readDocument(hostFS(s.file), filepath.Base(s.file))
	case s.db != "":
		db, err := materials.Open(filepath.Base(s.db), filepath.Dir(s.db))
		if err != nil {
			return nil, err
		}
		defer func() { _ = db.Close() }()
		return db.Archive(s.mid)
	case s.entry != "":
		client, err := a.client()
		if err != nil {
			return nil, err
		}
		defer func() { _ = client.Close() }()
		return client.Archive(ctx, s.entry)
	default:
		return nil, fmt.Errorf("one of --file, --db/--mid or --entry is required")
	}
}

func (a *app) client() (*nomad.Client, error) {
	return nomad.NewClient(a.cfg.Archive, a.logger)
}

// hostFS returns the directory of path as a filesystem.
func hostFS(path string) billy.Filesystem {
	return osfs.New(filepath.Dir(path))
}

func readDocument(fs billy.Filesystem, name string) (docpath.Node, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	doc, err := docpath.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}
