// Package schema validates loosely typed project data before it is adopted
// into the editor.
//
// A Schema maps field names to Types. Validation never stops at the first
// problem: every violation is reported with its full path, e.g.
//
//	pages[1].blocks[0].type: missing
//
// and the violations are returned together as an *AggregateError that
// matches domain.ErrImportValidation.
//
// The package also owns the JSON export envelope (projectName, pages,
// settings, version, exportedAt) and its import.
package schema
