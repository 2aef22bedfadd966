// Package sim drives a Corewar engine in real time.
//
// A [Controller] owns the current [engine.Engine] and rebuilds it whenever
// the roster changes. It runs the play loop by arming one frame at a time on
// a [Scheduler]; each frame ticks the engine [Controller.Speed] cycles,
// notifies observers, and only then arms the next frame, holding the target
// rate by subtracting the time the frame took.
//
// [Queue] is the scheduler for hosts that own their event loop (bubbletea,
// ebiten): callbacks only run when the host calls [Queue.RunDue], so every
// engine access stays on one goroutine without locks.
//
// [RunMatch] and [Tournament] play matches headless.
package sim
