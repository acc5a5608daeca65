// Package versions manages immutable project snapshots: semver-like tags,
// ordering, the current version, rollback, publishing and scheduled
// snapshots.
//
// Tags have the form vMAJOR.MINOR.PATCH (the leading v is optional) and are
// compared numerically, so v1.10.0 is newer than v1.9.0.
package versions
