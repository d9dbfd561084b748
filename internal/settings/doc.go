// Package settings persists ir.Settings and edits them in place.
//
// Files are YAML, JSON, or TOML, chosen by extension. The JSON layout is the
// settings.json written by the desktop application, so an existing file can
// be used directly. Rule packs written in CUE can be merged into settings
// with LoadRulePack and Import.
package settings
