package concurrent

import (
	"github.com/zeusync/worldcore/pkg/sequence"
	"golang.org/x/sync/errgroup"
)

// Concurrent runs action for each element of the iterator in its own
// goroutine and waits for all of them. It returns the first error.
func Concurrent[T any](i *sequence.Iterator[T], action func(T) error) error {
	return Limited(i, -1, action)
}

// Limited is Concurrent with at most limit goroutines in flight. A negative
// limit means no limit.
func Limited[T any](i *sequence.Iterator[T], limit int, action func(T) error) error {
	errGroup := errgroup.Group{}
	errGroup.SetLimit(limit)
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		errGroup.Go(func() error {
			return action(value)
		})
	}

	return errGroup.Wait()
}
