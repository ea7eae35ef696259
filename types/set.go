package types

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Set is an insertion ordered set
type Set[T comparable] struct {
	hash    map[T]struct{}
	storage []T
}

func NewSet[T comparable](values ...T) *Set[T] {
	set := &Set[T]{
		hash:    make(map[T]struct{}),
		storage: []T{},
	}

	set.Insert(values...)
	return set
}

func (st *Set[T]) init() {
	if st.hash == nil {
		st.hash = make(map[T]struct{})
	}
}

func (st *Set[T]) Insert(values ...T) {
	st.init()
	for _, elem := range values {
		if _, found := st.hash[elem]; found {
			continue
		}

		st.hash[elem] = struct{}{}
		st.storage = append(st.storage, elem)
	}
}

func (st *Set[T]) Exists(elem T) bool {
	if st == nil || st.hash == nil {
		return false
	}
	_, found := st.hash[elem]
	return found
}

func (st *Set[T]) Remove(elem T) {
	if !st.Exists(elem) {
		return
	}

	delete(st.hash, elem)
	for i, one := range st.storage {
		if one == elem {
			st.storage = append(st.storage[:i], st.storage[i+1:]...)
			break
		}
	}
}

func (st *Set[T]) Len() int {
	if st == nil {
		return 0
	}
	return len(st.storage)
}

// Array returns a copy of the elements in insertion order
func (st *Set[T]) Array() []T {
	if st == nil {
		return nil
	}
	out := make([]T, len(st.storage))
	copy(out, st.storage)
	return out
}

func (st *Set[T]) Range(f func(elem T) bool) {
	for _, elem := range st.Array() {
		if !f(elem) {
			return
		}
	}
}

// Difference returns elements of st missing from other
func (st *Set[T]) Difference(other *Set[T]) *Set[T] {
	diff := NewSet[T]()
	st.Range(func(elem T) bool {
		if !other.Exists(elem) {
			diff.Insert(elem)
		}
		return true
	})

	return diff
}

// ProperSubsetOf reports whether st is strictly contained in other
func (st *Set[T]) ProperSubsetOf(other *Set[T]) bool {
	if st.Len() >= other.Len() {
		return false
	}

	return st.Difference(other).Len() == 0
}

func (st *Set[T]) String() string {
	parts := []string{}
	st.Range(func(elem T) bool {
		parts = append(parts, fmt.Sprintf("%v", elem))
		return true
	})

	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

func (st *Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(st.Array())
}

func (st *Set[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}

	st.hash = make(map[T]struct{})
	st.storage = []T{}
	st.Insert(values...)
	return nil
}
