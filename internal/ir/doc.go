// Package ir provides the data model shared by every rxrename package.
//
// This package contains type definitions and their wire encodings. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Step and Op are sealed sum types; only the types in this package
//     implement them
//   - The zero value of every step is enabled
//   - Wire names (JSON and YAML) follow the settings file layout of the
//     desktop application so existing settings.json files load unchanged
package ir
