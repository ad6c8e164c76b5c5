package cradle

import (
	"errors"
	"fmt"
	"sync"
)

// Store holds fully created singleton beans by name.
type Store struct {
	inner sync.Map
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Put(name string, bean any) {
	s.inner.Store(name, bean)
}

func (s *Store) Get(name string) (bean any, found bool) {
	return s.inner.Load(name)
}

func (s *Store) ListNames() []string {
	names := make([]string, 0)
	s.inner.Range(func(name, _ any) bool {
		names = append(names, name.(string))
		return true
	})
	return names
}

func (s *Store) Close() error {
	closeErrors := make([]error, 0)
	s.inner.Range(func(name, bean any) bool {
		if closeable, ok := bean.(Closeable); ok {
			if err := closeable.Close(); err != nil {
				closeErrors = append(
					closeErrors,
					fmt.Errorf("failed to close bean %s:\n\t%v", name, err),
				)
			}
		}
		return true // continue iteration
	})

	return errors.Join(closeErrors...)
}
