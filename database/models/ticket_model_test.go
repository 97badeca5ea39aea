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
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTicketStatus(t *testing.T) {
	assert.Equal(t, TicketStatusOpen, ParseTicketStatus("open"))
	assert.Equal(t, TicketStatusSolved, ParseTicketStatus("solved"))
	assert.Equal(t, TicketStatusUnknown, ParseTicketStatus("on_fire"))
	assert.Equal(t, TicketStatusUnknown, ParseTicketStatus(""))
	// case matters: the source emits lowercase states
	assert.Equal(t, TicketStatusUnknown, ParseTicketStatus("Open"))
}

func TestParseTicketPriority(t *testing.T) {
	assert.Equal(t, TicketPriorityUrgent, ParseTicketPriority("urgent"))
	assert.Equal(t, TicketPriorityUnknown, ParseTicketPriority("sev1"))
	assert.Equal(t, TicketPriorityUnknown, ParseTicketPriority(""))
}

func TestTicketStatusIsTerminal(t *testing.T) {
	for _, status := range ClosedTicketStatuses {
		assert.True(t, status.IsTerminal(), status)
	}
	for _, status := range OpenTicketStatuses {
		assert.False(t, status.IsTerminal(), status)
	}
	assert.False(t, TicketStatusUnknown.IsTerminal())
}

func TestParseOwnerRole(t *testing.T) {
	role, ok := ParseOwnerRole("customer_success")
	assert.True(t, ok)
	assert.Equal(t, OwnerRoleCustomerSuccess, role)

	role, ok = ParseOwnerRole("project_manager")
	assert.True(t, ok)
	assert.Equal(t, OwnerRoleProjectManager, role)

	_, ok = ParseOwnerRole("account_executive")
	assert.False(t, ok)
}
