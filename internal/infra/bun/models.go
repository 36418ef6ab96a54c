package bunstore

import (
	"github.com/uptrace/bun"

	"bulletin-board/internal/domain"
)

type jobTypeModel struct {
	bun.BaseModel `bun:"table:job_types,alias:jt"`

	ID      string `bun:"id,pk"`
	Name    string `bun:"name,notnull"`
	Version int64  `bun:"version,notnull,default:1"`
}

func toJobTypeModel(jt *domain.JobType) *jobTypeModel {
	return &jobTypeModel{
		ID:      jt.ID,
		Name:    jt.Name,
		Version: jt.Version,
	}
}

func fromJobTypeModel(m *jobTypeModel) *domain.JobType {
	return &domain.JobType{
		ID:      m.ID,
		Name:    m.Name,
		Version: m.Version,
	}
}
