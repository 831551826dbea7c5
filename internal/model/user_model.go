package model

// User mirrors the fixed schema the text-to-SQL prompt advertises
// (internal/constant.UsersTableSchema). No soft delete: the table is plain
// relational data queried verbatim by generated SQL.
type User struct {
	Id      int     `gorm:"primaryKey;autoIncrement"`
	Name    string  `gorm:"type:text;not null"`
	Email   string  `gorm:"type:text;uniqueIndex;not null"`
	Balance float64 `gorm:"type:numeric(10,2);default:0.00"`
	Active  bool    `gorm:"default:true"`
}

func (User) TableName() string {
	return "users"
}
