package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todoapi/internal/dbx"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/todoitems"
	"github.com/dmitrijs2005/todoapi/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same
// factory serves plain connections and transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	TodoItems(db dbx.DBTX) todoitems.Repository
}
