// Package exporter writes the pipeline's result tables.
//
// Results are first laid out as a Table (StatisticsTable, CorrelationTable,
// FrameTable) and then sent to one or more destinations:
//
// CSVWriter: CSV files in the output directory, with an optional UTF-8 BOM
// for Excel compatibility. Floats use their shortest round-trip form and
// missing values are written as empty cells.
//
// WriteWorkbook: a single XLSX report with one sheet per table.
//
// Store: a SQLite database holding every table plus a runs log.
//
// RenderTable: a boxed console table for the run summary.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger, false)
//	stats := exporter.StatisticsTable("statistics_by_powiat", dataprocessing.CalculateBasicStatistics(merged))
//	err := writer.WriteTable(config.StatisticsByPowiatFile, stats)
package exporter
