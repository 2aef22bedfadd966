// Package engine describes the boundary between corearena and the virtual
// machine that actually runs champions.
//
// The VM is consumed as an opaque capability:
//
//   - [Factory] hands out empty [Builder] values
//   - [Builder] folds champions in and produces an [Engine]
//   - [Engine] ticks, answers queries and exposes its linear memory
//   - [Compiler] turns champion source into a [Champion] image
//
// # Memory views
//
// An engine exposes its per-cell state as byte offsets into one linear
// buffer ([MemoryLayout]). [NewMemoryView] reinterprets those offsets as
// typed slices without copying. Views alias the engine's buffer and must be
// re-derived after the engine is replaced.
//
// # Thread Safety
//
// Engines are NOT thread-safe. All calls are expected to happen on the
// goroutine that owns the UI event loop.
package engine
