package models

import "time"

// AccessMode records the operation mode granted to one (op, uid, package) identity.
type AccessMode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Op        string    `gorm:"not null;uniqueIndex:idx_access_identity" json:"op"`
	UID       int       `gorm:"not null;uniqueIndex:idx_access_identity" json:"uid"`
	Package   string    `gorm:"not null;uniqueIndex:idx_access_identity" json:"package"`
	Mode      int       `gorm:"not null" json:"mode"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StoreMeta is a key/value row describing the store itself.
type StoreMeta struct {
	Name  string `gorm:"primaryKey" json:"name"`
	Value string `gorm:"not null" json:"value"`
}
