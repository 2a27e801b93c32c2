// Package report renders stream registry snapshots for humans and tools.
//
// The entry points are [Write] and [Marshal], which take a [Format] and the
// result of [stdio.Registry.Snapshot]:
//
//	report.Write(os.Stdout, report.Table, reg.Snapshot())
//
// # Formats
//
//   - [JSON] and [YAML] encode the snapshot structs directly
//   - [CSV] and [TSV] write a header row and one row per stream
//   - [Table] draws a bordered table; column widths account for wide runes
//   - [Markdown] writes a GitHub-flavored Markdown table
//   - [Plain] writes one fixed-width line per stream
//
// Use [ParseFormat] to convert a CLI flag string into a [Format].
//
// # Table Options
//
//   - [WithBorder] selects [BorderRounded], [BorderASCII] or [BorderNone]
//   - [WithTitle] centers a title above the columns
package report
