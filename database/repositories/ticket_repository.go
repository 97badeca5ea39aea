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

type ticketRepository struct {
	*GormRepository[int64, models.Ticket]
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *ticketRepository {
	return &ticketRepository{
		db:             db,
		GormRepository: newGormRepository[int64, models.Ticket](db),
	}
}

// UpsertBatch fully replaces each touched row inside a single transaction.
func (r *ticketRepository) UpsertBatch(tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	return r.Transaction(func(tx *gorm.DB) error {
		return r.Upsert(tx, tickets, []clause.Column{{Name: "id"}}, nil)
	})
}

func (r *ticketRepository) GetByOrganization(orgID int64) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.Where("organization_id = ?", orgID).Order("source_updated_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *ticketRepository) GetByStatus(status models.TicketStatus) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.Where("status = ?", status).Find(&tickets).Error
	return tickets, err
}

// ExistingIDs returns the set of cached ticket ids. Used by the issue link
// phase to drop references to tickets outside the cache.
func (r *ticketRepository) ExistingIDs() (map[int64]struct{}, error) {
	var ids []int64
	if err := r.db.Model(&models.Ticket{}).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *ticketRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Ticket{}).Count(&count).Error
	return count, err
}
