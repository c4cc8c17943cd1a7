//go:build invariants

package cache

// invariantsEnabled turns on key validation and a full Verify after every
// mutating call. Violations panic.
const invariantsEnabled = true
