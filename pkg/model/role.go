package model

import "time"

// Role is a role and its default permission level.
type Role struct {
	Name         string    `gorm:"column:name;primaryKey"`
	DefaultLevel string    `gorm:"column:default_level"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}
