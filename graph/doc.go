// Package graph computes bounded-depth call hierarchies, cross-module
// coupling aggregates, and type dependency subgraphs over the code
// graph's edge sets.
package graph
