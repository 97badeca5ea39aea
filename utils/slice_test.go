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
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeduplicateSlice(t *testing.T) {
	type row struct {
		id      int
		payload string
	}

	in := []row{
		{1, "first sighting"},
		{2, "other"},
		{1, "second sighting"},
		{3, "third"},
	}

	out := DeduplicateSlice(in, func(r row) string { return strconv.Itoa(r.id) })

	assert.Equal(t, []row{
		{1, "second sighting"},
		{2, "other"},
		{3, "third"},
	}, out, "last occurrence wins, position of first appearance kept")
}

func TestFilterMapFlat(t *testing.T) {
	even := Filter([]int{1, 2, 3, 4}, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)

	doubled := Map([]int{1, 2}, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4}, doubled)

	assert.Equal(t, []int{1, 2, 3}, Flat([][]int{{1}, {2, 3}, {}}))
}

func TestFind(t *testing.T) {
	v, ok := Find([]string{"a", "b"}, func(s string) bool { return s == "b" })
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = Find([]string{"a"}, func(s string) bool { return s == "z" })
	assert.False(t, ok)
}
