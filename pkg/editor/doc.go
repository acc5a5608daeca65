// Package editor implements the editing session of one project.
//
// A Session owns the block document of the current page, the selection, the
// undo history, the clipboard and the autosave coordinator. Every operation
// goes canvas → document → history → autosave under one lock, so a change and
// its history entry can never be observed apart. Content and style edits of
// the same block are coalesced into one undo step while they arrive within
// the history window.
package editor
