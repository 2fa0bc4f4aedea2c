// pkg/importer/postgres.go
package importer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"csvql/pkg/catalog"
	"csvql/pkg/resultset"
	"csvql/pkg/storage"
	"csvql/pkg/types"
)

// ImportPostgres ingests every base table in the public schema of the
// PostgreSQL database at conninfo. Column types map onto the four supported
// types; anything unrecognized imports as str.
func (im *Importer) ImportPostgres(conninfo string) error {
	if err := im.prepareDataDir(); err != nil {
		return err
	}

	db, err := sql.Open("postgres", conninfo)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	var dbName string
	if err := db.QueryRow("SELECT current_database()").Scan(&dbName); err != nil {
		return err
	}

	meta := catalog.New(dbName, im.cfg.MetadataPath())
	if err := meta.Save(); err != nil {
		return err
	}

	tableNames, err := listPostgresTables(db)
	if err != nil {
		return err
	}

	store := storage.NewStore(im.cfg.DataDir)
	for _, tableName := range tableNames {
		if im.interactive && !im.confirm(fmt.Sprintf("Import table %s? (Y/n) ", tableName)) {
			continue
		}

		table, rows, err := im.importPostgresTable(db, tableName)
		if err != nil {
			return err
		}

		rs := &resultset.ResultSet{TableName: table.Name, Columns: table.Columns, Rows: rows}
		if err := store.WriteTable(table, rs); err != nil {
			return err
		}

		meta.Database.Tables = append(meta.Database.Tables, *table)
		if err := meta.Save(); err != nil {
			return err
		}
		fmt.Fprintf(im.out, "Imported %d row(s) into table %s\n", len(rows), table.Name)
	}

	return nil
}

// listPostgresTables returns the base tables of the public schema.
func listPostgresTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// importPostgresTable reads one table's schema and rows. Every value is
// selected as text and decoded with the engine's own field rules, so the
// imported files read back exactly like engine-written ones.
func (im *Importer) importPostgresTable(db *sql.DB, tableName string) (*catalog.Table, []resultset.Row, error) {
	colRows, err := db.Query(
		`SELECT column_name, data_type FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1
		 ORDER BY ordinal_position`, tableName)
	if err != nil {
		return nil, nil, err
	}
	defer colRows.Close()

	name := strings.ToLower(tableName)
	table := &catalog.Table{
		Name:    name,
		File:    name + ".csv",
		Columns: []catalog.Column{{Name: catalog.IDColumn, Type: types.TypeInt}},
	}

	var sourceColumns []string
	for colRows.Next() {
		var columnName, dataType string
		if err := colRows.Scan(&columnName, &dataType); err != nil {
			return nil, nil, err
		}
		sourceColumns = append(sourceColumns, columnName)
		table.Columns = append(table.Columns, catalog.Column{
			Name: strings.ToLower(columnName),
			Type: typeForPostgres(dataType),
		})
	}
	if err := colRows.Err(); err != nil {
		return nil, nil, err
	}
	if len(sourceColumns) == 0 {
		return nil, nil, fmt.Errorf("table %s has no columns", tableName)
	}

	selects := make([]string, len(sourceColumns))
	for i, col := range sourceColumns {
		selects[i] = pq.QuoteIdentifier(col) + "::text"
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selects, ", "), pq.QuoteIdentifier(tableName))

	dataRows, err := db.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer dataRows.Close()

	var rows []resultset.Row
	fields := make([]sql.NullString, len(sourceColumns))
	dest := make([]any, len(sourceColumns))
	for i := range fields {
		dest[i] = &fields[i]
	}

	for dataRows.Next() {
		if err := dataRows.Scan(dest...); err != nil {
			return nil, nil, err
		}

		row := make(resultset.Row, 0, len(table.Columns))
		row = append(row, types.NewInt(int64(len(rows))))
		for i, field := range fields {
			col := table.Columns[i+1]
			if !field.Valid {
				row = append(row, types.Empty(col.Type))
				continue
			}
			v, err := types.Parse(field.String, col.Type)
			if err != nil {
				return nil, nil, fmt.Errorf("table %s, column %s: %w", tableName, col.Name, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	if err := dataRows.Err(); err != nil {
		return nil, nil, err
	}

	table.NextID = int64(len(rows))
	return table, rows, nil
}

// typeForPostgres maps information_schema data types onto column types.
func typeForPostgres(dataType string) types.ColumnType {
	switch strings.ToLower(dataType) {
	case "smallint", "integer", "bigint":
		return types.TypeInt
	case "real", "double precision", "numeric", "decimal":
		return types.TypeFloat
	case "date", "timestamp without time zone", "timestamp with time zone":
		return types.TypeDatetime
	default:
		return types.TypeStr
	}
}
