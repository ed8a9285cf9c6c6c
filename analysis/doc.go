// Package analysis computes textual similarity, duplicate-snippet, and
// complexity reports over the function population of a code graph.
package analysis
