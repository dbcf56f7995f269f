// Package filesystem provides the rooted filesystem used for unit sources
// and staging roots.
//
// Every path handed to an FS is the absolute path the file will have on the
// target system; the FS maps it under its root directory. The implementation
// is backed by afero's base path filesystem.
package filesystem
