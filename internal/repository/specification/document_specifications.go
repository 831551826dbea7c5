package specification

import "gorm.io/gorm"

type BySourceFile struct {
	SourceFile string
}

func (s BySourceFile) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source_file = ?", s.SourceFile)
}
