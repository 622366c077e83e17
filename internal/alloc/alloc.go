// Package alloc is the cgo boundary onto the native free-list allocator
// spec §4.6 describes as an external collaborator: gl_init_allocator,
// gl_malloc, gl_free. The allocator itself is plain C (alloc.c) — spec.md
// treats it as something the VM reaches only through a documented C ABI,
// never a Go data structure — so this package's job is the boundary
// itself (cgo call marshalling, a process-wide lock since the allocator
// is serially accessed, and the Stats snapshot cmd/funxy's --debug-alloc
// flag prints) rather than a from-scratch Go port.
package alloc

/*
#include <stdlib.h>
#include "alloc.h"
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
)

var mu sync.Mutex

// Init (re)initializes the allocator with a fresh 64 KiB arena, discarding
// any blocks handed out by a previous Init. Must run once before the VM
// that owns this process's heap starts requesting blocks.
func Init() {
	mu.Lock()
	defer mu.Unlock()
	C.gl_init_allocator()
}

// Malloc requests an 8-byte-aligned block of at least n bytes, returning
// nil on failure — the same NULL-on-failure contract as the C gl_malloc.
func Malloc(n uintptr) unsafe.Pointer {
	mu.Lock()
	defer mu.Unlock()
	return unsafe.Pointer(C.gl_malloc(C.size_t(n)))
}

// Free returns a block obtained from Malloc to the free list for reuse.
func Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	C.gl_free(ptr)
}

// Stat is a point-in-time snapshot of allocator footprint.
type Stat struct {
	ArenaBytes uint64
	UsedBytes  uint64
	FreeBlocks uint64
}

// String renders a Stat the way --debug-alloc prints it, humanizing byte
// counts rather than spelling out raw integers.
func (s Stat) String() string {
	return fmt.Sprintf("arena=%s used=%s free_blocks=%d",
		humanize.Bytes(s.ArenaBytes), humanize.Bytes(s.UsedBytes), s.FreeBlocks)
}

// Stats reports the allocator's current arena size, the bytes carved from
// the arena for blocks (headers included; freeing a block does not lower
// it), and how many freed blocks are waiting to be reused.
func Stats() Stat {
	mu.Lock()
	defer mu.Unlock()
	return Stat{
		ArenaBytes: uint64(C.gl_arena_bytes()),
		UsedBytes:  uint64(C.gl_used_bytes()),
		FreeBlocks: uint64(C.gl_free_block_count()),
	}
}
