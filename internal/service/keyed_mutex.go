package service

import "sync"

// keyedMutex serializes operations per key so balance and
// subscription-set updates for one user never interleave, while
// different users proceed independently.
type keyedMutex struct {
	locks sync.Map // key -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
