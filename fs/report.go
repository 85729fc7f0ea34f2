package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/fwojciec/domsift"
)

// WriteScores writes one outer-fold score per line. Folds that held no
// evaluation rows appear as NaN so line numbers keep matching fold
// indices. The file appears atomically via a temp file and rename.
func WriteScores(path string, scores []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	for _, score := range scores {
		if _, err := tmp.WriteString(strconv.FormatFloat(score, 'g', -1, 64) + "\n"); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// foldRow is the CSV shape of one cross-validation fold. Chosen
// hyperparameters are JSON-encoded so mixed-type values survive the
// trip through a flat file.
type foldRow struct {
	Fold   int     `csv:"fold"`
	Score  float64 `csv:"score"`
	NoData bool    `csv:"no_data"`
	Params string  `csv:"params"`
}

// WriteFoldReports writes the per-fold report of a cross-validation
// run as CSV, one row per outer fold.
func WriteFoldReports(path string, reports []domsift.FoldReport) error {
	rows := make([]*foldRow, 0, len(reports))
	for _, report := range reports {
		params, err := json.Marshal(report.Params)
		if err != nil {
			return domsift.Errorf(domsift.EINTERNAL, "fold %d params: %v", report.Fold, err)
		}
		rows = append(rows, &foldRow{
			Fold:   report.Fold,
			Score:  report.Score,
			NoData: report.NoData,
			Params: string(params),
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gocsv.MarshalFile(&rows, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFoldReports loads a fold report CSV written by WriteFoldReports.
func ReadFoldReports(path string) ([]domsift.FoldReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []*foldRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "fold report %s: %v", path, err)
	}

	reports := make([]domsift.FoldReport, 0, len(rows))
	for _, row := range rows {
		var params domsift.Params
		if row.Params != "" {
			if err := json.Unmarshal([]byte(row.Params), &params); err != nil {
				return nil, domsift.Errorf(domsift.EPARSE, "fold report %s fold %d params: %v", path, row.Fold, err)
			}
		}
		reports = append(reports, domsift.FoldReport{
			Fold:   row.Fold,
			Score:  row.Score,
			NoData: row.NoData,
			Params: params,
		})
	}
	return reports, nil
}
