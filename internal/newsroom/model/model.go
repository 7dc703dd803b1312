package model

/**
 * @file: model.go
 * @description: models managed by auto-migrate
 */

// All returns every model managed by auto-migrate.
func All() []interface{} {
	return []interface{}{
		&MediaAsset{},
		&AuditLog{},
	}
}
