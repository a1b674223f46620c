// Package formats reads and writes Orbiter MSHX1 mesh files and the C++
// include listings derived from them.
package formats
