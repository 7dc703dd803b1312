package repo

import (
	"github.com/google/wire"

	"github.com/citypress/newsroom/pkg/database"
)

// ProviderSet provides the repository layer
var ProviderSet = wire.NewSet(
	ProvideRepositories,
	wire.FieldsOf(new(*Repositories), "Media", "Audit"),
)

// ProvideRepositories migrates the schema when enabled and builds the repositories.
func ProvideRepositories(db database.DB, conf database.Database) (*Repositories, error) {
	if conf.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	return NewRepositories(db), nil
}
