// Package modkit provides module wiring and core deps
package modkit

import (
	"hellomama/internal/modkit/repokit"
	"hellomama/internal/platform/config"
	"hellomama/internal/platform/logger"
	"hellomama/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// FromStore lifts an opened store into module deps
func FromStore(st *store.Store, cfg config.Conf) Deps {
	if st == nil {
		return Deps{Cfg: cfg}
	}
	return Deps{Log: st.Log, Cfg: cfg, PG: st.PG, CH: st.CH}
}
