/*
Package canvas maps editor input to document operations.

It owns the selection model (a primary block plus a multi-select set that
always contains the primary), drag-reorder and drop-from-catalog resolution,
the keyboard shortcut table, and a touch gesture recognizer. It never applies
history or autosave itself; the editor session wraps every resolved operation.
*/
package canvas
