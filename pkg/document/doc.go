/*
Package document implements the block tree of a page.

Blocks live in a flat arena keyed by id. The tree is implied by ParentID and
each sibling group is kept densely numbered (positions 0..n-1) after every
operation. Ids come from a per-document counter and are never reused.

Content and style edits, moves and z-order changes on a locked block fail with
domain.ErrLocked. Renaming, toggling visibility or the lock itself, and delete
remain allowed. Operations on an unknown id are a no-op and report false.
*/
package document
