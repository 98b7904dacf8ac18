package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"zymeboard/domain/results"
	"zymeboard/internal/errors"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

const (
	typeCSV     = "csv"
	typeXLSX    = "xlsx"
	typeParquet = "parquet"
)

// pandas writes its RangeIndex as an extra column with this prefix
const pandasIndexPrefix = "__index_level_"

// DataReader reads the protein table from parquet, Excel or CSV files
type DataReader struct {
	filePath string
	fileType string
}

// NewDataReader creates a reader, picking the format from the file extension
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := typeParquet
	switch ext {
	case ".csv":
		fileType = typeCSV
	case ".xlsx":
		fileType = typeXLSX
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// SupportedNames lists table file names in lookup order for a given stem
func SupportedNames(stem string) []string {
	return []string{stem + ".parquet", stem + ".csv", stem + ".xlsx"}
}

// ReadData reads the table into a results.Dataset
func (r *DataReader) ReadData() (*results.Dataset, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.MissingArtifact(r.filePath)
	}

	switch r.fileType {
	case typeCSV:
		return r.readCSVData()
	case typeXLSX:
		return r.readExcelData()
	default:
		return r.readParquetData()
	}
}

// readExcelData reads Sheet1, or the first sheet when there is no Sheet1
func (r *DataReader) readExcelData() (*results.Dataset, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := "Sheet1"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.SchemaMismatch("Excel file %s has no sheets", r.filePath)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheet)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*results.Dataset, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readParquetData reads every flat column of a parquet file as strings
func (r *DataReader) readParquetData() (*results.Dataset, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open parquet file")
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat parquet file")
	}

	readStart := time.Now()
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, errors.Wrap(errors.SchemaMismatch("%s is not a parquet file: %v", r.filePath, err), "failed to open parquet file")
	}

	columns := pf.Schema().Columns()
	headers := make([]string, len(columns))
	for i, path := range columns {
		headers[i] = strings.Join(path, ".")
	}

	reader := parquet.NewReader(pf)
	defer reader.Close()

	ds := &results.Dataset{Headers: keepHeaders(headers)}
	buf := make([]parquet.Row, 256)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			record := make(results.Row, len(ds.Headers))
			for _, v := range row {
				col := v.Column()
				if col < 0 || col >= len(headers) || strings.HasPrefix(headers[col], pandasIndexPrefix) {
					continue
				}
				record[headers[col]] = formatValue(v)
			}
			ds.Rows = append(ds.Rows, record)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read parquet rows")
		}
	}
	log.Printf("[DataReader] parquet file read in %.2fms (%d columns, %d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(ds.Headers), len(ds.Rows))

	if len(ds.Rows) == 0 {
		return nil, errors.SchemaMismatch("parquet file %s has no data rows", r.filePath)
	}
	return ds, nil
}

func formatValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}

func keepHeaders(headers []string) []string {
	kept := make([]string, 0, len(headers))
	for _, h := range headers {
		if !strings.HasPrefix(h, pandasIndexPrefix) {
			kept = append(kept, h)
		}
	}
	return kept
}

// processRows converts raw string rows into a Dataset
func (r *DataReader) processRows(rows [][]string) (*results.Dataset, error) {
	if len(rows) < 2 {
		return nil, errors.SchemaMismatch("%s must have at least a header row and one data row", r.filePath)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]results.Row, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(results.Row, len(headers))

		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &results.Dataset{
		Headers: keepHeaders(headers),
		Rows:    dataRows,
	}, nil
}

// DetectIDColumn picks the record identifier column, preferring the configured name
func DetectIDColumn(data *results.Dataset, preferred string) (string, error) {
	if len(data.Rows) == 0 {
		return "", fmt.Errorf("no data rows found")
	}

	candidates := []string{preferred, "accession", "id", "protein_id", "uniprot_id", "entry"}
	for _, colName := range candidates {
		if colName == "" {
			continue
		}
		for _, header := range data.Headers {
			if strings.EqualFold(header, colName) && isValidIDColumn(data, header) {
				return header, nil
			}
		}
	}

	if len(data.Headers) > 0 && isValidIDColumn(data, data.Headers[0]) {
		return data.Headers[0], nil
	}

	return "", fmt.Errorf("could not detect a valid identifier column")
}

// isValidIDColumn checks that a column has unique, mostly non-empty values
func isValidIDColumn(data *results.Dataset, columnName string) bool {
	values := make(map[string]bool)
	emptyCount := 0

	for _, row := range data.Rows {
		value := row[columnName]
		if value == "" {
			emptyCount++
			continue
		}
		if values[value] {
			return false
		}
		values[value] = true
	}

	return float64(emptyCount)/float64(len(data.Rows)) < 0.1
}
