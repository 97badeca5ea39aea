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

package zendesk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractClassification(t *testing.T) {
	mapping := FieldMapping{ProductFieldID: 11, ModuleFieldID: 12, SubtypeFieldID: 13}

	t.Run("custom fields win", func(t *testing.T) {
		ticket := Ticket{
			Subject: "payroll run stuck", // would trigger the keyword fallback
			CustomFields: []CustomField{
				{ID: 11, Value: "Benefits"},
				{ID: 12, Value: "Enrollment"},
				{ID: 13, Value: "Data Issue"},
			},
		}
		c := ExtractClassification(ticket, mapping)
		assert.Equal(t, Classification{Product: "Benefits", Module: "Enrollment", IssueSubtype: "Data Issue"}, c)
	})

	t.Run("subject keyword fallback", func(t *testing.T) {
		ticket := Ticket{Subject: "Payroll export fails with 500"}
		c := ExtractClassification(ticket, mapping)
		assert.Equal(t, "payroll", c.Product)
	})

	t.Run("tag prefix fallbacks", func(t *testing.T) {
		ticket := Ticket{
			Subject: "strange error",
			Tags:    []string{"vip", "product_timesheets", "module_exports"},
		}
		c := ExtractClassification(ticket, mapping)
		assert.Equal(t, "timesheets", c.Product)
		assert.Equal(t, "exports", c.Module)
	})

	t.Run("nothing matches", func(t *testing.T) {
		c := ExtractClassification(Ticket{Subject: "strange error"}, mapping)
		assert.Equal(t, Classification{}, c)
	})

	t.Run("non-string field values are stringified", func(t *testing.T) {
		ticket := Ticket{CustomFields: []CustomField{{ID: 11, Value: float64(7)}}}
		c := ExtractClassification(ticket, mapping)
		assert.Equal(t, "7", c.Product)
	})

	t.Run("zero field ids are skipped", func(t *testing.T) {
		ticket := Ticket{CustomFields: []CustomField{{ID: 0, Value: "ghost"}}}
		c := ExtractClassification(ticket, FieldMapping{})
		assert.Equal(t, Classification{}, c)
	})
}

func TestIsEscalated(t *testing.T) {
	assert.True(t, IsEscalated([]string{"vip", "escalated"}))
	assert.True(t, IsEscalated([]string{"Exec_Escalation"}))
	assert.True(t, IsEscalated([]string{"red_account"}))
	assert.False(t, IsEscalated([]string{"vip", "churn_risk"}))
	assert.False(t, IsEscalated(nil))
}
