// Package sandbox is a small deterministic stand-in for the Corewar engine
// and compiler. It satisfies the [engine] capability interfaces so the arena
// can be run and tested end to end without the real VM.
//
// The instruction set is intentionally tiny:
//
//	live          0x01        proof of life for the owning champion
//	st   off, v   0x03 o8 v8  write byte v at pc+off
//	jmp  off      0x09 o8     pc += off
//	fork off      0x0c o8     spawn a process at pc+off
//
// Any other byte is skipped. Offsets are signed bytes. Every CheckInterval
// cycles, processes that did not execute live since the previous check are
// removed; the match ends when no process is left.
//
// Champion images use the classic header: magic, 128 byte name, code size,
// 2048 byte comment, all big endian, followed by the code.
package sandbox
