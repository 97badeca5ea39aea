// Copyright (C) 2025 deskmirror contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package utils

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

type errGroup[T any] struct {
	g *errgroup.Group

	mut     sync.Mutex
	results []T
}

// ErrGroup is a bounded fan-out helper. At most limit functions run
// concurrently; the first error cancels collection and is returned by
// WaitAndCollect.
func ErrGroup[T any](limit int) *errGroup[T] {
	g := &errgroup.Group{}
	g.SetLimit(limit)
	return &errGroup[T]{g: g}
}

func (e *errGroup[T]) Go(fn func() (T, error)) {
	e.g.Go(func() error {
		res, err := fn()
		if err != nil {
			return err
		}
		e.mut.Lock()
		e.results = append(e.results, res)
		e.mut.Unlock()
		return nil
	})
}

func (e *errGroup[T]) WaitAndCollect() ([]T, error) {
	if err := e.g.Wait(); err != nil {
		return nil, err
	}
	return e.results, nil
}
