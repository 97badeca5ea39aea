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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package repositories

import (
	"github.com/deskmirror/deskmirror/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepository[ID comparable, T utils.Tabler] struct {
	db *gorm.DB
}

func newGormRepository[ID comparable, T utils.Tabler](db *gorm.DB) *GormRepository[ID, T] {
	return &GormRepository[ID, T]{
		db: db,
	}
}

// GetDB returns the transaction if one is passed, the base handle otherwise.
func (g *GormRepository[ID, T]) GetDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return g.db
}

func (g *GormRepository[ID, T]) All() ([]T, error) {
	var ts []T
	err := g.db.Find(&ts).Error
	return ts, err
}

func (g *GormRepository[ID, T]) Read(id ID) (T, error) {
	var t T
	err := g.db.First(&t, "id = ?", id).Error
	return t, err
}

func (g *GormRepository[ID, T]) Save(tx *gorm.DB, t *T) error {
	return g.GetDB(tx).Save(t).Error
}

func (g *GormRepository[ID, T]) Upsert(tx *gorm.DB, ts []T, conflictingColumns []clause.Column, updateOnly []string) error {
	if len(ts) == 0 {
		return nil
	}
	if len(conflictingColumns) == 0 {
		if len(updateOnly) > 0 {
			return g.GetDB(tx).Clauses(clause.OnConflict{DoUpdates: clause.AssignmentColumns(updateOnly)}).Create(&ts).Error
		}
		return g.GetDB(tx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&ts).Error
	}

	if len(updateOnly) > 0 {
		return g.GetDB(tx).Clauses(clause.OnConflict{
			DoUpdates: clause.AssignmentColumns(updateOnly),
			Columns:   conflictingColumns,
		}).Create(&ts).Error
	}

	return g.GetDB(tx).Clauses(clause.OnConflict{UpdateAll: true, Columns: conflictingColumns}).Create(&ts).Error
}

func (g *GormRepository[ID, T]) SaveBatch(tx *gorm.DB, ts []T) error {
	if len(ts) == 0 {
		return nil
	}

	err := g.GetDB(tx).Save(ts).Error
	// check if "extended protocol limited to 65535 parameters" error
	if err != nil && err.Error() == "extended protocol limited to 65535 parameters" {
		// split the batch in half and try again
		half := len(ts) / 2
		if half == 0 {
			return err
		}
		if err := g.SaveBatch(tx, ts[:half]); err != nil {
			return err
		}
		return g.SaveBatch(tx, ts[half:])
	}
	return err
}

func (g *GormRepository[ID, T]) DeleteBatch(tx *gorm.DB, ts []T) error {
	return g.GetDB(tx).Delete(ts).Error
}

func (g *GormRepository[ID, T]) Transaction(fn func(tx *gorm.DB) error) error {
	return g.db.Transaction(fn)
}
