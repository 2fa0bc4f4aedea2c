// pkg/importer/csv.go
package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"csvql/pkg/catalog"
	"csvql/pkg/resultset"
	"csvql/pkg/storage"
	"csvql/pkg/types"
)

// ImportCSV ingests every *.csv file under dir as one table each. The file's
// header row names the columns; types are elicited per column. Every table
// gets the synthetic __id column prepended and ids assigned in file order.
func (im *Importer) ImportCSV(dir string) error {
	if err := im.prepareDataDir(); err != nil {
		return err
	}

	meta := catalog.New(filepath.Base(filepath.Clean(dir)), im.cfg.MetadataPath())
	if err := meta.Save(); err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return err
	}

	store := storage.NewStore(im.cfg.DataDir)
	for _, file := range files {
		fileName := filepath.Base(file)
		tableName := strings.ToLower(strings.TrimSuffix(fileName, filepath.Ext(fileName)))

		if im.interactive && !im.confirm(fmt.Sprintf("Import file %s as table %s? (Y/n) ", fileName, tableName)) {
			continue
		}

		table, rows, err := im.importCSVFile(file, tableName, fileName)
		if err != nil {
			return err
		}
		if table == nil {
			fmt.Fprintf(im.out, "File %s is empty\n", fileName)
			continue
		}

		rs := &resultset.ResultSet{TableName: tableName, Columns: table.Columns, Rows: rows}
		if err := store.WriteTable(table, rs); err != nil {
			return err
		}

		meta.Database.Tables = append(meta.Database.Tables, *table)
		if err := meta.Save(); err != nil {
			return err
		}
		fmt.Fprintf(im.out, "Imported %d row(s) into table %s\n", len(rows), tableName)
	}

	return nil
}

// importCSVFile reads one CSV file into a table definition and its typed
// rows. A file without a header row yields a nil table.
func (im *Importer) importCSVFile(path, tableName, fileName string) (*catalog.Table, []resultset.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", fileName, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	table := &catalog.Table{
		Name:    tableName,
		File:    fileName,
		Columns: []catalog.Column{{Name: catalog.IDColumn, Type: types.TypeInt}},
	}

	header := records[0]
	for _, columnName := range header {
		columnName = strings.ToLower(strings.TrimSpace(columnName))
		colType := types.TypeStr
		if im.interactive {
			colType, err = im.promptType(tableName, columnName)
			if err != nil {
				return nil, nil, err
			}
		}
		table.Columns = append(table.Columns, catalog.Column{Name: columnName, Type: colType})
	}

	var rows []resultset.Row
	for i, record := range records[1:] {
		row := make(resultset.Row, 0, len(table.Columns))
		row = append(row, types.NewInt(int64(i)))
		for j, field := range record {
			v, err := types.Parse(field, table.Columns[j+1].Type)
			if err != nil {
				return nil, nil, fmt.Errorf("%s row %d, column %s: %w", fileName, i+1, table.Columns[j+1].Name, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	table.NextID = int64(len(rows))
	return table, rows, nil
}
