// File: pkg/multi/mirror/observer.go
package mirror

// Observer receives the outcome of mirror operations that are otherwise only visible in logs.
// Optimistic background writes are reported here and never to the original caller.
// Implementations must be safe for concurrent use
type Observer interface {
	WriteFinished(policy ReturnPolicy, required, successes int, err error)
	BackgroundWriteFinished(index int, err error)
	RollbackFinished(index int, err error)
}

type nopObserver struct{}

func (nopObserver) WriteFinished(ReturnPolicy, int, int, error) {}
func (nopObserver) BackgroundWriteFinished(int, error) {}
func (nopObserver) RollbackFinished(int, error) {}
