// Package dataprocessing loads the regional datasets, normalizes the names of
// administrative units, merges the datasets and computes their statistics.
//
// # Architecture
//
// The package is organized into three main components:
//
// 1. Readers: ReadCSV and ReadXLSX turn files into raw text tables
// 2. Loaders: one Loader method per dataset builds a normalized frame
// 3. Analytics: MergeFrames, CalculateBasicStatistics and CalculateCorrelations
//
// # Datasets
//
// Every loader returns a frame keyed by Voivodeship (lower case, without the
// "woj. " prefix) and, except for alcohol, by Powiat:
//
//	alcohol     Voivodeship, Number of sellers
//	fire        Voivodeship, Powiat, Number of events
//	population  Voivodeship, Powiat, Population
//	area        Voivodeship, Powiat, Area (ha)
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.EncodingAuto)
//	fire, err := loader.ProcessFireData(ctx, "pozary2024.csv")
//	if err != nil {
//	    return err
//	}
//	population, err := loader.ProcessPopulationData(ctx, "powierzchnia_i_ludnosc2024.xlsx")
//	...
//	byPowiat, err := dataprocessing.MergeFrames(
//	    []*frame.Frame{fire, population, area}, dataprocessing.ModePowiat)
//	stats := dataprocessing.CalculateBasicStatistics(byPowiat)
//
// Missing input files produce errors that match os.ErrNotExist.
package dataprocessing
