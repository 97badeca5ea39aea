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
	"time"
)

type Organization struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	DomainNames        []string       `json:"domain_names"`
	OrganizationFields map[string]any `json:"organization_fields"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// crmIDFieldKeys are the custom field key spellings operators have used for
// the CRM account identifier over the years. First non-null wins.
var crmIDFieldKeys = []string{
	"crm_id",
	"crm_account_id",
	"salesforce_id",
	"sfdc_account_id",
}

// CRMIdentifier extracts the candidate CRM account id from the
// organization's custom fields, or nil if none of the known keys is set.
func (o Organization) CRMIdentifier() *string {
	for _, key := range crmIDFieldKeys {
		v, ok := o.OrganizationFields[key]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprintf("%v", v)
		if s != "" {
			return &s
		}
	}
	return nil
}

type CustomField struct {
	ID    int64 `json:"id"`
	Value any   `json:"value"`
}

type Ticket struct {
	ID             int64         `json:"id"`
	OrganizationID *int64        `json:"organization_id"`
	Subject        string        `json:"subject"`
	Status         string        `json:"status"`
	Priority       string        `json:"priority"`
	RequesterID    *int64        `json:"requester_id"`
	AssigneeID     *int64        `json:"assignee_id"`
	Tags           []string      `json:"tags"`
	CustomFields   []CustomField `json:"custom_fields"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type organizationsResponse struct {
	Organizations []Organization `json:"organizations"`
	NextPage      *string        `json:"next_page"`
}

type searchResponse struct {
	Results  []Ticket `json:"results"`
	NextPage *string  `json:"next_page"`
	Count    int      `json:"count"`
}

type userResponse struct {
	User User `json:"user"`
}

type ticketFieldsResponse struct {
	TicketFields []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	} `json:"ticket_fields"`
}
