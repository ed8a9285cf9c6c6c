// Package query interprets declarative query descriptors and fixed
// pattern families over a code graph store.
package query
