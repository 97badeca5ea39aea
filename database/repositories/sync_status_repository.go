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
	"time"

	"github.com/deskmirror/deskmirror/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type syncStatusRepository struct {
	*GormRepository[string, models.SyncStatus]
	db *gorm.DB
}

func NewSyncStatusRepository(db *gorm.DB) *syncStatusRepository {
	return &syncStatusRepository{
		db:             db,
		GormRepository: newGormRepository[string, models.SyncStatus](db),
	}
}

func (r *syncStatusRepository) RecordPhaseStatus(phase models.SyncPhase, state models.SyncState, count int, errMsg *string) error {
	status := models.SyncStatus{
		Phase:       phase,
		State:       state,
		LastRunAt:   time.Now(),
		RecordCount: count,
		Error:       errMsg,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phase"}},
		UpdateAll: true,
	}).Create(&status).Error
}

func (r *syncStatusRepository) GetPhaseStatuses() ([]models.SyncStatus, error) {
	var statuses []models.SyncStatus
	err := r.db.Order("phase").Find(&statuses).Error
	return statuses, err
}

// LastSuccessfulRun reports when the phase last finished with success, used
// by the delta mode to bound incremental queries.
func (r *syncStatusRepository) LastSuccessfulRun(phase models.SyncPhase) (time.Time, error) {
	var status models.SyncStatus
	err := r.db.First(&status, "phase = ? AND state = ?", phase, models.SyncStateSuccess).Error
	if err != nil {
		return time.Time{}, err
	}
	return status.LastRunAt, nil
}
