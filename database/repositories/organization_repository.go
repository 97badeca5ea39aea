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

package repositories

import (
	"github.com/deskmirror/deskmirror/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type organizationRepository struct {
	*GormRepository[int64, models.Organization]
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *organizationRepository {
	return &organizationRepository{
		db:             db,
		GormRepository: newGormRepository[int64, models.Organization](db),
	}
}

// UpsertBatch replaces every column except crm_name, which is owned by the
// assignment-matching phase and must survive an organization refresh.
func (r *organizationRepository) UpsertBatch(orgs []models.Organization) error {
	return r.Upsert(nil, orgs, []clause.Column{{Name: "id"}}, []string{
		"name", "domains", "crm_id", "source_created_at", "source_updated_at", "synced_at",
	})
}

func (r *organizationRepository) UpdateCRMName(orgID int64, crmName string) error {
	return r.db.Model(&models.Organization{}).
		Where("id = ?", orgID).
		Update("crm_name", crmName).Error
}

func (r *organizationRepository) FindByCRMID(crmID string) (models.Organization, error) {
	var org models.Organization
	err := r.db.First(&org, "crm_id = ?", crmID).Error
	return org, err
}

func (r *organizationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Organization{}).Count(&count).Error
	return count, err
}
