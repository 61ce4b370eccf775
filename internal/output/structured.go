package output

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// JSONFormatter renders the report as JSON. Amounts are quoted decimal strings.
type JSONFormatter struct {
	Indent bool
}

func (j JSONFormatter) Name() string { return "json" }

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if j.Indent {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// YAMLFormatter renders the report as YAML
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

func (y YAMLFormatter) Format(report *Report) ([]byte, error) {
	return yaml.Marshal(report)
}
