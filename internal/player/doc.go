// Package player keeps the roster of competing champions.
//
// A [Registry] owns every [Player]: its id, display color, source code and
// last successfully compiled [engine.Champion]. Only players with a compiled
// champion are ready to be loaded into an engine; subscribers registered with
// [Registry.OnReadyChange] are told whenever that ready set changes.
//
// The registry is not safe for concurrent use. It is meant to be mutated from
// the UI event loop only.
package player
