// Package exporter renders chain snapshots into downloadable files.
//
// Two formats are supported:
//
// CSV: one row per contract, with a UTF-8 BOM so Excel opens the file
// correctly. Written to any io.Writer, so handlers stream straight to the
// HTTP response.
//
// XLSX: a workbook with a Chain sheet (all contracts) and an Open Interest
// sheet (per-strike totals), built with excelize.
package exporter
