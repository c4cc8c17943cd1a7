//go:build !invariants

package cache

const invariantsEnabled = false
