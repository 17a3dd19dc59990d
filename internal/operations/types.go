package operations

// operation Step identifiers
const (
	StepIDLoad        = "load"
	StepIDConsistency = "consistency"
	StepIDMerge       = "merge"
	StepIDSummarize   = "summarize"
	StepIDWrite       = "write"
)

// operation Step names
const (
	StepNameLoad        = "Data Loading"
	StepNameConsistency = "Name Consistency"
	StepNameMerge       = "Merging"
	StepNameSummarize   = "Statistics"
	StepNameWrite       = "Output"
)

// Context keys for operation state
const (
	ContextKeyFilesFound   = "files_found"
	ContextKeyMismatches   = "name_mismatches"
	ContextKeyFilesWritten = "files_written"
)

// Analysis modes accepted on the command line
const (
	AnalysisModeAll         = "all"
	AnalysisModePowiat      = "powiat"
	AnalysisModeVoivodeship = "voivodeship"
)
