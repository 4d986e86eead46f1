package value

// Heap is the list of heap-allocated values: concatenated strings (Str)
// and the SourceStr values materialized at compile time for string
// literals.
//
// The list's sole purpose is deterministic teardown: ownership transfers
// from compiler to VM along with the chunk, and the whole list is released
// in one place when a run finishes. No reclamation happens during
// execution. A growing slice serves here; the list structure itself
// carries no semantic weight.
type Heap struct {
	objects []Value
}

// NewHeap returns an empty heap-object list.
func NewHeap() *Heap {
	return &Heap{}
}

// Track links v into the heap-object list. Called whenever the compiler
// materializes a SourceStr constant or the VM concatenates a new Str.
func (h *Heap) Track(v Value) {
	h.objects = append(h.objects, v)
}

// Len reports how many heap objects are currently tracked.
func (h *Heap) Len() int {
	return len(h.objects)
}

// Take transfers ownership of the list's contents to the caller and resets
// this heap to empty. Called at the compiler/VM handoff.
func (h *Heap) Take() *Heap {
	taken := &Heap{objects: h.objects}
	h.objects = nil
	return taken
}

// Release discards every tracked object. Called when the VM that owns this
// heap is torn down or Interpret returns.
func (h *Heap) Release() {
	h.objects = nil
}
