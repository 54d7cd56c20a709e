package quantity

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/agentic-research/nomadkit/api"
	"github.com/agentic-research/nomadkit/internal/docpath"
)

// EnergyVariant selects where the total energy is read from. The two
// schema versions are kept apart on purpose.
type EnergyVariant string

const (
	// EnergyFromWorkflow follows workflow/0/calculation_result_ref.
	EnergyFromWorkflow EnergyVariant = "workflow"
	// EnergyFromLastCalculation reads the last calculation of the first run.
	EnergyFromLastCalculation EnergyVariant = "last-calculation"
)

// KPointsVariant selects where the k-point grid is read from.
type KPointsVariant string

const (
	// KPointsFromControlIn parses the raw FHI-aims control.in, for schema
	// versions that do not parse the grid.
	KPointsFromControlIn KPointsVariant = "control-in"
	// KPointsFromParsed reads run/0/method/0/k_mesh/grid.
	KPointsFromParsed KPointsVariant = "parsed"
)

// RawFetcher retrieves raw upload files of an entry.
type RawFetcher interface {
	RawFile(ctx context.Context, entryID, name string) (string, error)
}

// TotalEnergy returns the total energy of the converged calculation in eV.
func TotalEnergy(doc docpath.Node, variant EnergyVariant) (float64, error) {
	var calc docpath.Node
	var err error
	switch variant {
	case EnergyFromWorkflow, "":
		calc, err = resolver.Follow(doc, api.WorkflowCalculationRef)
	case EnergyFromLastCalculation:
		calc, err = lastCalculation(doc)
	default:
		return 0, fmt.Errorf("total energy: unknown variant %q", variant)
	}
	if err != nil {
		return 0, fmt.Errorf("total energy: %w", err)
	}

	energy, err := floatAt(calc, api.TotalEnergy)
	if err != nil {
		return 0, fmt.Errorf("total energy: %w", err)
	}
	return energy / ElectronVolt, nil
}

func lastCalculation(doc docpath.Node) (docpath.Node, error) {
	node, err := resolver.Resolve(doc, api.RunCalculations)
	if err != nil {
		return nil, err
	}
	calcs, ok := node.(docpath.Sequence)
	if !ok || len(calcs) == 0 {
		return nil, fmt.Errorf("%w: no calculations in run", ErrMalformed)
	}
	return calcs[len(calcs)-1], nil
}

var kGridPattern = regexp.MustCompile(`(?m)^\s*k_grid\s+(\d+)\s+(\d+)\s+(\d+)\s*$`)

// ParseKGrid extracts the first k_grid line of an FHI-aims control.in.
func ParseKGrid(controlIn string) ([3]int, error) {
	var grid [3]int
	m := kGridPattern.FindStringSubmatch(controlIn)
	if m == nil {
		return grid, fmt.Errorf("%w: no k_grid line in control.in", ErrMalformed)
	}
	for i := range grid {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return grid, fmt.Errorf("%w: k_grid: %v", ErrMalformed, err)
		}
		grid[i] = v
	}
	return grid, nil
}

// FHIAimsKPoints returns the k-point grid of an FHI-aims calculation.
// The control-in variant needs fetcher; the parsed variant ignores it.
func FHIAimsKPoints(ctx context.Context, doc docpath.Node, variant KPointsVariant, fetcher RawFetcher) ([3]int, error) {
	var grid [3]int
	switch variant {
	case KPointsFromControlIn, "":
		if fetcher == nil {
			return grid, fmt.Errorf("kpoints: control-in variant needs an archive client")
		}
		idNode, err := resolver.Resolve(doc, api.CalcID)
		if err != nil {
			return grid, fmt.Errorf("kpoints: %w", err)
		}
		scalar, _ := idNode.(docpath.Scalar)
		id, ok := scalar.String()
		if !ok || id == "" {
			return grid, fmt.Errorf("kpoints: %w: calc_id is not a string", ErrMalformed)
		}
		text, err := fetcher.RawFile(ctx, id, api.ControlIn)
		if err != nil {
			return grid, fmt.Errorf("kpoints: %w", err)
		}
		grid, err = ParseKGrid(text)
		if err != nil {
			return grid, fmt.Errorf("kpoints: %w", err)
		}
		return grid, nil
	case KPointsFromParsed:
		node, err := resolver.Resolve(doc, api.KMeshGrid)
		if err != nil {
			return grid, fmt.Errorf("kpoints: %w", err)
		}
		values, err := Floats(node)
		if err != nil {
			return grid, fmt.Errorf("kpoints: %w", err)
		}
		if len(values) != 3 {
			return grid, fmt.Errorf("kpoints: %w: grid has %d entries", ErrMalformed, len(values))
		}
		for i, v := range values {
			grid[i] = int(v)
		}
		return grid, nil
	default:
		return grid, fmt.Errorf("kpoints: unknown variant %q", variant)
	}
}
