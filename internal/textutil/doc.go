// Package textutil provides title normalization and string similarity
// primitives used by fuzzy matching.
package textutil
