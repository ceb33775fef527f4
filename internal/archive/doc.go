// Package archive extracts copy archives onto the host filesystem.
//
// Archives are tar streams as produced by "tar cf - -C <dir> <base>" inside a
// container or by "docker cp <id>:<path> -". A copied directory therefore
// arrives as entries under its own base name and is recreated as a child of
// the destination directory; a copied file lands directly in it. Gzip and
// zstd compressed streams are detected by their magic bytes.
//
// Entry names are joined to the destination with symlink-aware containment,
// so no entry can be written outside the destination directory.
package archive
