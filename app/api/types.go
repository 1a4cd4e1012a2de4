package api

import (
	"github.com/lysyi3m/zot-comb/app/database"
	"github.com/lysyi3m/zot-comb/app/tasks"
)

type Handler struct {
	runs    database.RunRepository
	changes database.ChangeRepository
	domains database.DomainRepository
	stats   *tasks.Stats
	runID   string
}
