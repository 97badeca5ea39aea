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
	"time"

	"github.com/lib/pq"
)

// Organization is a customer entity as recorded in the ticketing system.
// CRMID is the authoritative cross-system identifier when present. CRMName
// is derived data written only by the assignment-matching phase and must
// never be used for identity decisions.
type Organization struct {
	ID      int64          `json:"id" gorm:"primaryKey"`
	Name    string         `json:"name" gorm:"not null"`
	Domains pq.StringArray `json:"domains" gorm:"type:text[]"`

	CRMID   *string `json:"crmId" gorm:"column:crm_id;index"`
	CRMName *string `json:"crmName" gorm:"column:crm_name"`

	SourceCreatedAt time.Time `json:"sourceCreatedAt"`
	SourceUpdatedAt time.Time `json:"sourceUpdatedAt"`
	SyncedAt        time.Time `json:"syncedAt"`
}

func (Organization) TableName() string {
	return "organizations"
}
