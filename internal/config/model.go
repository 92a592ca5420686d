package config

// File is the raw content of one settings file. Pointer fields distinguish
// "not set" from a zero value.
type File struct {
	Analyzer *AnalyzerFile

	Exclude         []string
	CanonicalShells []string
	// Suppress maps "base" or a document kind name to analyzer check codes.
	Suppress map[string][]string
	// Ignore lists "<path> <locator>" entries excluded from analysis.
	Ignore []string
}

// AnalyzerFile holds the analyzer section of a settings file.
type AnalyzerFile struct {
	Binary      *string
	Required    *bool
	MinSeverity *string
	Workers     *int
	ScratchDir  *string
}
