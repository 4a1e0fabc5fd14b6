package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"agrolog/groundstation/internal/constants"
	"agrolog/groundstation/internal/models/entities"
	gormModels "agrolog/groundstation/internal/models/gorm"
)

// KeysRepo answers API key lookups. On Postgres the raw sqlx path is used;
// on the sqlite default it falls through to the ORM.
type KeysRepo struct {
	db  *sqlx.DB
	orm *gorm.DB
}

func NewApiKeysRepo(db *sqlx.DB, orm *gorm.DB) *KeysRepo {
	return &KeysRepo{db: db, orm: orm}
}

func (r *KeysRepo) GetStatus(ctx context.Context, key string) (*entities.ApiKey, error) {
	if r.db != nil {
		var keyRes entities.ApiKey
		err := r.db.QueryRowxContext(ctx, constants.GetStatusByApiKey, key).StructScan(&keyRes)
		if err != nil {
			return nil, err
		}
		return &keyRes, nil
	}

	var model gormModels.ApiKey
	if err := r.orm.WithContext(ctx).First(&model, "id = ?", key).Error; err != nil {
		return nil, err
	}
	return &entities.ApiKey{ApiKey: model.ID, Status: model.Status}, nil
}
