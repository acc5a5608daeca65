package sqlstore

import (
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// dialect hides the syntax differences between the supported engines.
type dialect struct {
	name    string
	text    string // large text column type
	key     string // indexed string column type
	dollars bool   // $1 placeholders instead of ?
	mysql   bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite, "sqlite3":
		return dialect{name: DriverSQLite, text: "TEXT", key: "TEXT"}, nil
	case DriverPostgres, "postgresql":
		return dialect{name: DriverPostgres, text: "TEXT", key: "TEXT", dollars: true}, nil
	case DriverMySQL:
		return dialect{name: DriverMySQL, text: "LONGTEXT", key: "VARCHAR(191)", mysql: true}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// rebind rewrites ? placeholders for engines that use $n.
func (d dialect) rebind(query string) string {
	if !d.dollars {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an insert that overwrites non-key columns on conflict.
func (d dialect) upsert(table string, keys, cols []string) string {
	all := append(append([]string{}, keys...), cols...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ", table, strings.Join(all, ", "), marks)

	sets := make([]string, len(cols))
	if d.mysql {
		for i, c := range cols {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return d.rebind(q + "ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "))
	}
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
	}
	return d.rebind(q + fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(keys, ", "), strings.Join(sets, ", ")))
}

func (d dialect) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pagecraft_projects (
    id %s NOT NULL PRIMARY KEY,
    name %s NOT NULL,
    data %s NOT NULL,
    updated_at BIGINT NOT NULL
)`, d.key, d.text, d.text),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pagecraft_versions (
    project_id %s NOT NULL,
    id %s NOT NULL,
    version %s NOT NULL,
    tag %s NOT NULL,
    description %s NOT NULL,
    author %s NOT NULL,
    created_at BIGINT NOT NULL,
    is_published BOOLEAN NOT NULL,
    data %s NOT NULL,
    PRIMARY KEY (project_id, id)
)`, d.key, d.key, d.text, d.text, d.text, d.text, d.text),
	}
}
