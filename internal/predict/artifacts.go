package predict

import (
	_ "embed"
	"fmt"
)

var (
	//go:embed assets/model.json
	bundledModel []byte

	//go:embed assets/features.json
	bundledSchema []byte
)

// Artifacts is a loaded classifier plus the schema it was trained on.
type Artifacts struct {
	Classifier Classifier
	Schema     []string
	Source     string
}

// LoadArtifacts reads the model and schema files. An empty path selects the
// bundled artifact for that half; a non-empty path that cannot be read is an
// error.
func LoadArtifacts(modelPath, schemaPath string) (*Artifacts, error) {
	var (
		clf *Logistic
		err error
		src = "bundled"
	)
	if modelPath == "" {
		clf, err = ParseLogistic(bundledModel)
	} else {
		clf, err = LoadLogistic(modelPath)
		src = modelPath
	}
	if err != nil {
		return nil, err
	}

	var schema []string
	if schemaPath == "" {
		schema, err = ParseSchema(bundledSchema)
	} else {
		schema, err = LoadSchema(schemaPath)
	}
	if err != nil {
		return nil, err
	}

	if clf.NumFeatures() != len(schema) {
		return nil, fmt.Errorf("%w: model has %d coefficients, schema has %d columns",
			ErrSchemaMismatch, clf.NumFeatures(), len(schema))
	}
	return &Artifacts{Classifier: clf, Schema: schema, Source: src}, nil
}
