package models

import "gorm.io/gorm"

// FeedModels are the tables of the feed app.
var FeedModels = []interface{}{
	&User{},
	&Relationship{},
}

// CounterModels are the tables of the counter app.
var CounterModels = []interface{}{
	&Counter{},
}

// AutoMigrate creates or updates the tables for the given models.
func AutoMigrate(db *gorm.DB, models ...interface{}) error {
	return db.AutoMigrate(models...)
}
