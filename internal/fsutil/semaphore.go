package fsutil

// Semaphore bounds the number of concurrent file operations.
type Semaphore struct {
	sem chan struct{}
}

// NewSemaphore creates a semaphore with the given capacity.
func NewSemaphore(max int) *Semaphore {
	return &Semaphore{
		sem: make(chan struct{}, max),
	}
}

// Acquire takes a slot, blocking until one is free.
func (s *Semaphore) Acquire() {
	s.sem <- struct{}{}
}

// Release frees a slot.
func (s *Semaphore) Release() {
	<-s.sem
}
