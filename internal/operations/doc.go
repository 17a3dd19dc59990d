// Package operations runs the analysis as an ordered list of steps.
//
// A run is one OperationState that flows through the five pipeline steps:
//
//   - load: validate the input directory and load the four datasets
//     concurrently
//   - consistency: compare administrative names across datasets and report
//     mismatches
//   - merge: outer-join the datasets by powiat and/or by voivodeship
//   - summarize: descriptive statistics and correlation matrices
//   - write: CSV outputs plus the optional merged CSVs, XLSX report and
//     SQLite store
//
// The Manager executes registered steps in order and stops at the first
// failure; there are no retries. Each Step runs in its own span and its
// duration and outcome are recorded in the run metrics.
//
// Example usage:
//
//	deps := operations.NewDependencies(cfg, metrics, logger, os.Stdout)
//	manager := operations.NewManager(providers.Tracer, metrics, logger)
//	for _, step := range operations.NewPipelineSteps(deps) {
//		manager.RegisterStep(step)
//	}
//	state := operations.NewOperationState(runID, modes...)
//	err := manager.Execute(ctx, state)
package operations
