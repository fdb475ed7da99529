// Package database opens the database that backs row staging and inspects its schema.
//
// SQLite (in memory by default) is used unless the configuration selects MySQL. The
// inspector reads column definitions with PRAGMA table_info on SQLite and SHOW COLUMNS
// on MySQL, which the staging store uses to verify its table after migration.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "staged_rows")
package database
