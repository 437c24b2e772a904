package repo

import (
	"gorm.io/gorm"
)

type IRepo interface {
	Trade() ITrade
}

type Repo struct {
	tapeDB *gorm.DB
}

func NewRepo(tapeDB *gorm.DB) IRepo {
	return &Repo{
		tapeDB: tapeDB,
	}
}

func (r *Repo) Trade() ITrade {
	return NewTradeSQLRepo(r.tapeDB)
}
