package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// OrderByIDAsc breaks ties between rows sharing a timestamp.
func OrderByIDAsc(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}
