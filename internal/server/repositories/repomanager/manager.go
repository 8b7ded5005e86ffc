package repomanager

import (
	"context"
	"database/sql"

	"github.com/MMaus/listkeeper/internal/dbx"
	"github.com/MMaus/listkeeper/internal/server/repositories/history"
	"github.com/MMaus/listkeeper/internal/server/repositories/refreshtokens"
	"github.com/MMaus/listkeeper/internal/server/repositories/shoppingitems"
	"github.com/MMaus/listkeeper/internal/server/repositories/tasks"
	"github.com/MMaus/listkeeper/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can
// run the same repository code on a plain connection or inside a
// transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	ShoppingItems(db dbx.DBTX) shoppingitems.Repository
	History(db dbx.DBTX) history.Repository
}
