// Package registry provides a generic, type-safe registry that remembers
// registration order. The module catalog uses it so that the order in which
// factories are registered is the order in which modules run in every build.
package registry
