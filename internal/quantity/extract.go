package quantity

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentic-research/nomadkit/internal/docpath"
)

// Options select schema variants for Extract.
type Options struct {
	Energy  EnergyVariant
	KPoints KPointsVariant
	Fetcher RawFetcher
}

type extractor func(ctx context.Context, doc docpath.Node, opts Options) (any, error)

var extractors = map[string]extractor{
	"dos": func(_ context.Context, doc docpath.Node, _ Options) (any, error) {
		return DOSValues(doc)
	},
	"dos-energies": func(_ context.Context, doc docpath.Node, _ Options) (any, error) {
		return DOSEnergies(doc)
	},
	"band-gap": func(_ context.Context, doc docpath.Node, _ Options) (any, error) {
		return BandGap(doc)
	},
	"total-energy": func(_ context.Context, doc docpath.Node, opts Options) (any, error) {
		return TotalEnergy(doc, opts.Energy)
	},
	"n-basis": func(_ context.Context, doc docpath.Node, _ Options) (any, error) {
		return FHIAimsBasisFunctions(doc)
	},
	"kpoints": func(ctx context.Context, doc docpath.Node, opts Options) (any, error) {
		grid, err := FHIAimsKPoints(ctx, doc, opts.KPoints, opts.Fetcher)
		if err != nil {
			return nil, err
		}
		return grid[:], nil
	},
}

// Names lists the quantities Extract understands.
func Names() []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extract computes the named quantity.
func Extract(ctx context.Context, doc docpath.Node, name string, opts Options) (any, error) {
	fn, ok := extractors[name]
	if !ok {
		return nil, fmt.Errorf("unknown quantity %q (known: %v)", name, Names())
	}
	return fn(ctx, doc, opts)
}
