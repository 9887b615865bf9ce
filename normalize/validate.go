package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zbmed-semtec/mlentory/pipeline"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// ValidateBatch checks every record of one kind, splitting the batch
// into survivors and diverted validation errors. It fails with
// ErrEmptyOutput only when no record survives.
func ValidateBatch(kind fair4ml.EntityKind, records []schema.Record, logger *slog.Logger) ([]schema.Record, []*schema.ValidationError, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator := schema.NewValidator()

	valid := make([]schema.Record, 0, len(records))
	var diverted []*schema.ValidationError
	for _, r := range records {
		if err := validator.Validate(kind, r); err != nil {
			var verr *schema.ValidationError
			if !errors.As(err, &verr) {
				return nil, nil, err
			}
			logger.Warn("diverting invalid record",
				"kind", kind, "subject", verr.Subject, "reason", verr.Reason)
			diverted = append(diverted, verr)
			continue
		}
		valid = append(valid, r)
	}

	if len(records) > 0 && len(valid) == 0 {
		return nil, diverted, fmt.Errorf("all %d %s records invalid: %w",
			len(records), kind, pipeline.ErrEmptyOutput)
	}
	return valid, diverted, nil
}

// WriteErrors persists diverted records as the
// <kind>_transformation_errors.json artifact. No file is written for an
// empty batch.
func WriteErrors(dir string, kind fair4ml.EntityKind, diverted []*schema.ValidationError) (string, error) {
	if len(diverted) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create errors directory: %w", err)
	}

	path := filepath.Join(dir, string(kind)+"_transformation_errors.json")
	data, err := json.MarshalIndent(diverted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal validation errors: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
