package sources

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/cachewell/refreshcache"
)

// OpenMySQL, OpenPostgres, and OpenSQLite open a *sql.DB against the
// registered driver named by the blank imports above. Grounded on the
// teacher's mysqlcache/postgrescache/sqlitecache packages, each of which
// did nothing but plumb a DSN and a fixed driver name through to
// sqlcore.New; here the per-backend distinction collapses to picking
// which sql.Open call to make.
func OpenMySQL(dsn string) (*sql.DB, error)    { return sql.Open("mysql", dsn) }
func OpenPostgres(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
func OpenSQLite(dsn string) (*sql.DB, error)   { return sql.Open("sqlite", dsn) }

// SQLQueryString returns a Func that runs query against db on every
// refresh and scans a single result column into a string. Grounded on the
// teacher's sqlcore package, which ran one dialect-aware SELECT per Get
// call against a cache table; here the query and its dialect are entirely
// up to the caller.
func SQLQueryString(ctx context.Context, db *sql.DB, query string, args ...any) refreshcache.Func[string] {
	return func() (string, error) {
		var value string
		err := db.QueryRowContext(ctx, query, args...).Scan(&value)
		return value, err
	}
}
