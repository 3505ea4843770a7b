// Package display holds the consumer-side state of a browsing session: the
// rows and their tiles, the selection, and the camera, advanced once per
// frame by [Model.Update].
//
// A [Model] is owned by a single goroutine (the render loop). Workers never
// touch it; their results arrive as loader events that the owner applies
// with [Model.Apply] or [Model.Tick]. Tiles are only ever appended, so the
// selection indices stay valid while rows are still filling up.
//
// Motion is exponential smoothing: every frame the camera and each row's
// selection move a fraction dt/Smoothing of the remaining distance toward
// their targets. The tile under the cursor grows toward ZoomCeiling and
// gains a border; every other tile shrinks back to scale 1.
//
// Other goroutines (the preview server) read a [Snapshot], which shares no
// memory with the model.
package display
