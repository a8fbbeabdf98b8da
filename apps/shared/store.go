package shared

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/dummy"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/redis"
	"github.com/VinayakSharmaa/ICS4U-25-26/storage/database/sqlx"
)

// RedisKeyPrefix namespaces the app's keys in a shared redis database.
const RedisKeyPrefix = "ics4u:"

// OpenStore opens the document store of the configured engine.
// The returned *sqlx.DB is nil unless the engine is an SQL one; SQL stores are migrated when `migrate` is set.
func OpenStore(conf *core.Config, migrate bool) (school.Store, *sqlx.DB, error) {
	if conf.Database.IsSQL() {
		db, err := database.Open(conf.Database)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening database")
		}
		if migrate {
			if err = database.Migrate(db); err != nil {
				_ = db.Close()
				return nil, nil, errors.Wrap(err, "migrating database")
			}
		}
		return sqlxdb.NewStore(db), db, nil
	}

	switch conf.Database.Engine {
	case core.EngineMemory:
		return dummydb.Open(), nil, nil
	case core.EngineRedis:
		return redisdb.NewStore(redisdb.Open(conf.Redis), RedisKeyPrefix), nil, nil
	}
	return nil, nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
}
