package fs

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/domsift"
)

// modelFile is the on-disk gob envelope for a trained model. Params
// travel as JSON because gob cannot encode interface-typed map values
// without registering every concrete type.
type modelFile struct {
	Family     string
	Columns    []string
	ParamsJSON []byte
	Estimator  domsift.Estimator
}

// SaveModel writes a trained model to path atomically. The estimator's
// concrete type must be gob-registered, which every estimator package
// does in its init.
func SaveModel(path string, model *domsift.Model) error {
	if err := model.Validate(); err != nil {
		return err
	}
	paramsJSON, err := json.Marshal(model.Params)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	env := modelFile{
		Family:     model.Family,
		Columns:    model.Columns,
		ParamsJSON: paramsJSON,
		Estimator:  model.Estimator,
	}
	if err := gob.NewEncoder(tmp).Encode(&env); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// LoadModel reads a model written by SaveModel. Returns ENOTFOUND if
// the file does not exist and EPARSE if it cannot be decoded.
func LoadModel(path string) (*domsift.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domsift.Errorf(domsift.ENOTFOUND, "model file %q not found", path)
		}
		return nil, err
	}
	defer f.Close()

	var env modelFile
	if err := gob.NewDecoder(f).Decode(&env); err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "model file %s: %v", path, err)
	}

	var params domsift.Params
	if len(env.ParamsJSON) > 0 {
		if err := json.Unmarshal(env.ParamsJSON, &params); err != nil {
			return nil, domsift.Errorf(domsift.EPARSE, "model file %s params: %v", path, err)
		}
	}

	model := &domsift.Model{
		Family:    env.Family,
		Columns:   env.Columns,
		Params:    params,
		Estimator: env.Estimator,
	}
	if err := model.Validate(); err != nil {
		return nil, domsift.Errorf(domsift.EPARSE, "model file %s: %s", path, domsift.ErrorMessage(err))
	}
	return model, nil
}
