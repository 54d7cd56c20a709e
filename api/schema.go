package api

// Archive paths of the NOMAD metainfo schema that the extractors read.
// Pointers stored in the archive are relative to ArchiveRoot.
const (
	// ArchiveRoot is the section of an entry response holding the archive.
	ArchiveRoot = "archive"

	// DOSElectronic is the results section holding the electronic DOS summary.
	DOSElectronic = "archive/results/properties/electronic/dos_electronic"
	// DOSTotal stores pointers to the per spin-channel DOS sections.
	DOSTotal = DOSElectronic + "/total"
	// DOSEnergies stores a pointer to the energy grid shared by all channels.
	DOSEnergies = DOSElectronic + "/energies"
	// DOSFermiEnergy is the Fermi energy in Joule.
	DOSFermiEnergy = DOSElectronic + "/energy_fermi"
	// DOSBandGap is the sequence of per-channel band gap sections.
	DOSBandGap = DOSElectronic + "/band_gap"

	// Relative to a DOS channel section.
	ChannelValue         = "value"
	ChannelNormalization = "normalization_factor"

	// Relative to a band gap channel.
	GapLowestUnoccupied = "energy_lowest_unoccupied"
	GapHighestOccupied  = "energy_highest_occupied"

	// WorkflowCalculationRef points at the calculation holding the final
	// energies in the workflow-v1 schema.
	WorkflowCalculationRef = "archive/workflow/0/calculation_result_ref"
	// RunCalculations lists single-point calculations in run order.
	RunCalculations = "archive/run/0/calculation"
	// TotalEnergy is relative to a calculation section.
	TotalEnergy = "energy/total/value"

	// CalcID identifies the entry in the raw-file API.
	CalcID = "archive/metadata/calc_id"

	// FHIAimsAtomParameters lists the species of the first method section.
	FHIAimsAtomParameters = "archive/run/0/method/0/atom_parameters"
	// FHIAimsBasisFunctions is relative to one atom_parameters entry.
	FHIAimsBasisFunctions = "x_fhi_aims_section_controlInOut_atom_species/0/x_fhi_aims_section_controlInOut_basis_func"
	// KMeshGrid is the parsed k-point grid of newer schema versions.
	KMeshGrid = "archive/run/0/method/0/k_mesh/grid"

	// ControlIn is the FHI-aims input file name in the raw-file API.
	ControlIn = "control.in"
)

// EntryData is the key of the entry envelope returned by
// GET /entries/{id}/archive that holds the archive document.
const EntryData = "data"

// ConvergenceData is the input of a convergence plot.
type ConvergenceData struct {
	// Matrix is the square similarity matrix between calculations.
	Matrix [][]float64 `yaml:"matrix" json:"matrix"`
	// KPoints is the number of k-points per calculation.
	KPoints []float64 `yaml:"kpoints" json:"kpoints"`
	// NFunc is the number of basis functions per calculation.
	NFunc []float64 `yaml:"nfunc" json:"nfunc"`
}
