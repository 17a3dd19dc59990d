// Package frame implements the small columnar table used by the regional
// statistics pipeline.
//
// A Frame is an ordered set of typed Series. String series track missing
// values with a null flag; numeric series use NaN. The package provides only
// the operations the pipeline needs:
//
//	- column selection and renaming (Select, SelectIndex, SetNames)
//	- row filtering (Filter, DropNulls)
//	- forward filling and string mapping on a Series
//	- GroupBySum with sorted group keys
//	- OuterMerge, a full outer join on one or more key columns
//
// Lookups of unknown columns return ErrMissingColumn so callers can test
// for it with errors.Is.
package frame
