/*
Package style resolves the effective styles of a block for a preview breakpoint.

Blocks carry base styles plus optional per-device overrides (tablet, mobile)
and named custom breakpoint overrides. Resolution is a pure shallow merge and
is safe to call on every render. Visibility per device travels as a synthetic
"display_<device>" key through the same merge.
*/
package style
