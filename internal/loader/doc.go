// Package loader implements the thin file readers §6 names out of scope
// for the core: ASCII STL mesh triangles and the geometry manifest
// (solid/material/priority/time-window table) that `internal/geom` and
// `internal/material` need to build a Geometry, following the same
// bufio.Scanner columnar-parsing shape field.LoadTable uses. It contains
// no physics — only file-to-struct translation.
package loader
