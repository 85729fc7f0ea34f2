package fs

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fwojciec/domsift"
	"github.com/fwojciec/domsift/dataset"
)

// WriteTable writes a feature table as a CSV shard ready for dataset
// assembly. The shard appears atomically: rows go to a temporary file
// in the target directory, which is renamed over the final path on
// success.
func WriteTable(path string, table *domsift.FeatureTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, table); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func writeRecords(f *os.File, table *domsift.FeatureTable) error {
	w := csv.NewWriter(f)

	header := make([]string, 0, 3+len(table.Columns))
	header = append(header, dataset.URLColumn, dataset.PathColumn, dataset.LabelColumn)
	header = append(header, table.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, block := range table.Blocks {
		if len(block.Features) != len(table.Columns) {
			return domsift.Errorf(domsift.ESCHEMA, "block %s has %d features, table has %d columns", block.Path, len(block.Features), len(table.Columns))
		}
		record[0] = block.URL
		record[1] = block.Path
		record[2] = strconv.Itoa(block.Label)
		for i, v := range block.Features {
			record[3+i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
