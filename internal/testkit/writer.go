package testkit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"zymeboard/adapters/npz"
	"zymeboard/domain/results"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"
)

// Table formats WriteDir can emit
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatXLSX    = "xlsx"
)

// WriteOptions controls the on-disk layout of a result set
type WriteOptions struct {
	TableFormat string
	// Combined writes X_red_mst_slc.npz instead of X_red.npz plus hdbscan_structures.npz
	Combined bool
	Card     string
}

// WriteDir writes a result set in the layout the local loader expects
func WriteDir(dir string, res *results.Results, opts WriteOptions) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	format := opts.TableFormat
	if format == "" {
		format = FormatCSV
	}
	tablePath := filepath.Join(dir, "df."+format)
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(tablePath, res.Dataset)
	case FormatParquet:
		err = WriteParquet(tablePath, res.Dataset)
	case FormatXLSX:
		err = WriteXLSX(tablePath, res.Dataset)
	default:
		err = fmt.Errorf("unsupported table format %q", format)
	}
	if err != nil {
		return err
	}

	xRed := res.Embedding.Coords
	mst := TreeMatrix(res.Tree)
	link := LinkageMatrix(res.Linkage)
	if opts.Combined {
		err = npz.WriteArchive(filepath.Join(dir, "X_red_mst_slc.npz"),
			map[string]*mat.Dense{"X_red": xRed, "mst": mst, "linkage": link})
	} else {
		err = npz.WriteArchive(filepath.Join(dir, "X_red.npz"), map[string]*mat.Dense{"X_red": xRed})
		if err == nil {
			err = npz.WriteArchive(filepath.Join(dir, "hdbscan_structures.npz"),
				map[string]*mat.Dense{"mst": mst, "linkage": link})
		}
	}
	if err != nil {
		return err
	}

	if opts.Card != "" {
		return os.WriteFile(filepath.Join(dir, "README.md"), []byte(opts.Card), 0o644)
	}
	return nil
}

// TreeMatrix encodes a spanning tree as an (m,3) array
func TreeMatrix(tree *results.SpanningTree) *mat.Dense {
	m := mat.NewDense(len(tree.Edges), 3, nil)
	for i, e := range tree.Edges {
		m.SetRow(i, []float64{float64(e.From), float64(e.To), e.Weight})
	}
	return m
}

// LinkageMatrix encodes a merge history as an (n-1,4) array
func LinkageMatrix(link *results.Linkage) *mat.Dense {
	m := mat.NewDense(len(link.Steps), 4, nil)
	for i, s := range link.Steps {
		m.SetRow(i, []float64{float64(s.Left), float64(s.Right), s.Distance, float64(s.Size)})
	}
	return m
}

// WriteCSV writes the table with a header row
func WriteCSV(path string, ds *results.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ds.Headers); err != nil {
		return err
	}
	record := make([]string, len(ds.Headers))
	for _, row := range ds.Rows {
		for i, h := range ds.Headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the table to Sheet1
func WriteXLSX(path string, ds *results.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, h := range ds.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range ds.Rows {
		for c, h := range ds.Headers {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, row[h]); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

type proteinRecord struct {
	Accession       string  `parquet:"accession"`
	Cluster         int64   `parquet:"cluster"`
	Organism        string  `parquet:"organism"`
	Length          int64   `parquet:"length"`
	MolecularWeight float64 `parquet:"molecular_weight"`
}

// WriteParquet writes a table with the synthetic schema as parquet
func WriteParquet(path string, ds *results.Dataset) error {
	records := make([]proteinRecord, len(ds.Rows))
	for i, row := range ds.Rows {
		cluster, err := strconv.ParseInt(row["cluster"], 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: cluster: %w", i, err)
		}
		length, err := strconv.ParseInt(row["length"], 10, 64)
		if err != nil {
			return fmt.Errorf("row %d: length: %w", i, err)
		}
		weight, err := strconv.ParseFloat(row["molecular_weight"], 64)
		if err != nil {
			return fmt.Errorf("row %d: molecular_weight: %w", i, err)
		}
		records[i] = proteinRecord{
			Accession:       row["accession"],
			Cluster:         cluster,
			Organism:        row["organism"],
			Length:          length,
			MolecularWeight: weight,
		}
	}
	return parquet.WriteFile(path, records)
}
