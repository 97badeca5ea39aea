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

type issueLinkRepository struct {
	*GormRepository[int64, models.IssueLink]
	db *gorm.DB
}

func NewIssueLinkRepository(db *gorm.DB) *issueLinkRepository {
	return &issueLinkRepository{
		db:             db,
		GormRepository: newGormRepository[int64, models.IssueLink](db),
	}
}

// ReplaceAll clears the table and inserts the new link set in one
// transaction. Tracker state is only current as of the latest crawl, so the
// old set carries no information worth merging.
func (r *issueLinkRepository) ReplaceAll(links []models.IssueLink) error {
	return r.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.IssueLink{}).Error; err != nil {
			return err
		}
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
}

func (r *issueLinkRepository) GetByTicket(ticketID int64) ([]models.IssueLink, error) {
	var links []models.IssueLink
	err := r.db.Where("ticket_id = ?", ticketID).Find(&links).Error
	return links, err
}
