package model

// Override is an explicit permission level on one node for one role.
type Override struct {
	RoleName string `gorm:"column:role_name;primaryKey"`
	NodeKind string `gorm:"column:node_kind;primaryKey"`
	NodeID   string `gorm:"column:node_id;primaryKey"`
	Level    string `gorm:"column:level"`
}

func (Override) TableName() string {
	return "permission_overrides"
}
