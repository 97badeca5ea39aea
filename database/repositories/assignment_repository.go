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
)

type assignmentRepository struct {
	*GormRepository[string, models.Assignment]
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *assignmentRepository {
	return &assignmentRepository{
		db:             db,
		GormRepository: newGormRepository[string, models.Assignment](db),
	}
}

// ReplaceForRole deletes every assignment of the role and inserts the new
// set in one transaction. A plain upsert would keep stale rows alive after
// a rename or unassignment in the CRM.
func (r *assignmentRepository) ReplaceForRole(role models.OwnerRole, assignments []models.Assignment) error {
	return r.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if len(assignments) == 0 {
			return nil
		}
		return tx.Create(&assignments).Error
	})
}

func (r *assignmentRepository) GetByRole(role models.OwnerRole) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.Where("role = ?", role).Find(&assignments).Error
	return assignments, err
}
