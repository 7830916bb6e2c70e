// Package naming builds target filenames from date parts and keeps them
// unique within a planning pass.
//
//   - Build(prefix, year, month, day, sep) composes a base name.
//   - SplitExt separates a filename into base name and extension.
//   - Resolver hands out collision-free names ("base", "base_1", ...) checked
//     against both the disk and names already claimed in the same pass.
package naming
