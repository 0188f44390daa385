// Package commands implements the probforecast subcommands
package commands

import (
	"fmt"
	"os"

	forecaster "github.com/aouyang1/go-probforecaster"
	"github.com/goccy/go-json"
)

func readModel(path string) (*forecaster.Forecaster, forecaster.Model, error) {
	var m forecaster.Model
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, m, fmt.Errorf("unable to read model file, %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, m, fmt.Errorf("unable to decode model file, %w", err)
	}
	f, err := forecaster.NewFromModel(m)
	if err != nil {
		return nil, m, err
	}
	return f, m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode json, %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
