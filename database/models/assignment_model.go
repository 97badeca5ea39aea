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

import "time"

type OwnerRole string

const (
	OwnerRoleCustomerSuccess OwnerRole = "customer_success"
	OwnerRoleProjectManager  OwnerRole = "project_manager"
)

func ParseOwnerRole(raw string) (OwnerRole, bool) {
	switch OwnerRole(raw) {
	case OwnerRoleCustomerSuccess, OwnerRoleProjectManager:
		return OwnerRole(raw), true
	default:
		return "", false
	}
}

// Assignment maps a CRM account to its responsible owner for one role.
// Rows for a role are replaced wholesale on each sync - an upsert would let
// stale assignments survive a rename or unassignment in the CRM.
// OrganizationID stays nil when no cached organization matched; that is a
// valid terminal state, not an error.
type Assignment struct {
	AccountID string    `json:"accountId" gorm:"primaryKey"`
	Role      OwnerRole `json:"role" gorm:"primaryKey;type:text"`

	AccountName string `json:"accountName"`

	OwnerID    string `json:"ownerId"`
	OwnerName  string `json:"ownerName"`
	OwnerEmail string `json:"ownerEmail"`

	OrganizationID *int64 `json:"organizationId" gorm:"index"`

	SyncedAt time.Time `json:"syncedAt"`
}

func (Assignment) TableName() string {
	return "assignments"
}
