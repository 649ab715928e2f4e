package fio

import (
	"github.com/gofrs/flock"
)

// FileLocker keeps a second process from opening the same backing file
type FileLocker interface {
	TryLock() (bool, error)
	Unlock() error
}

const flockSuffix = ".lock"

// NewFlock returns the lock guarding the backing file at path
func NewFlock(path string) FileLocker {
	return flock.New(path + flockSuffix)
}
