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
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FieldMapping maps the classification custom fields to their ticket field
// ids. Ids can be pinned via environment variables; anything left at zero is
// resolved by field title through TicketFieldMapping.
type FieldMapping struct {
	ProductFieldID int64
	ModuleFieldID  int64
	SubtypeFieldID int64
}

func fieldMappingFromEnv() FieldMapping {
	return FieldMapping{
		ProductFieldID: fieldIDFromEnv("ZENDESK_PRODUCT_FIELD_ID"),
		ModuleFieldID:  fieldIDFromEnv("ZENDESK_MODULE_FIELD_ID"),
		SubtypeFieldID: fieldIDFromEnv("ZENDESK_SUBTYPE_FIELD_ID"),
	}
}

func fieldIDFromEnv(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Classification is the product/module/subtype triple derived from a
// ticket's custom fields, with string-matching fallbacks when the fields
// are unset.
type Classification struct {
	Product      string
	Module       string
	IssueSubtype string
}

// productKeywords backs the subject fallback. Tuned to one organization's
// product naming, like the rest of the heuristics here.
var productKeywords = []string{"payroll", "benefits", "onboarding", "timesheet", "reporting"}

// ExtractClassification reads the mapped custom fields off the ticket,
// falling back to keyword matches on subject and tags when a field is unset.
func ExtractClassification(ticket Ticket, mapping FieldMapping) Classification {
	c := Classification{
		Product:      customFieldString(ticket, mapping.ProductFieldID),
		Module:       customFieldString(ticket, mapping.ModuleFieldID),
		IssueSubtype: customFieldString(ticket, mapping.SubtypeFieldID),
	}

	if c.Product == "" {
		subject := strings.ToLower(ticket.Subject)
		for _, keyword := range productKeywords {
			if strings.Contains(subject, keyword) {
				c.Product = keyword
				break
			}
		}
	}

	if c.Product == "" {
		for _, tag := range ticket.Tags {
			if product, ok := strings.CutPrefix(tag, "product_"); ok {
				c.Product = product
				break
			}
		}
	}

	if c.Module == "" {
		for _, tag := range ticket.Tags {
			if module, ok := strings.CutPrefix(tag, "module_"); ok {
				c.Module = module
				break
			}
		}
	}

	return c
}

func customFieldString(ticket Ticket, fieldID int64) string {
	if fieldID == 0 {
		return ""
	}
	for _, field := range ticket.CustomFields {
		if field.ID != fieldID || field.Value == nil {
			continue
		}
		if s, ok := field.Value.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", field.Value)
	}
	return ""
}

// escalationTags mark a ticket as escalated when present.
var escalationTags = []string{"escalated", "escalation", "exec_escalation", "red_account"}

func IsEscalated(tags []string) bool {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, marker := range escalationTags {
			if lower == marker {
				return true
			}
		}
	}
	return false
}
