package database

import "puppytalk/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Images come first because users reference them.
func PersistentModels() []any {
	return []any{
		&models.Image{},
		&models.User{},
		&models.Session{},
		&models.Post{},
		&models.PostImage{},
		&models.Comment{},
		&models.Like{},
	}
}
