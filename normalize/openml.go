package normalize

import (
	"log/slog"
	"strconv"

	"github.com/zbmed-semtec/mlentory/extract/openml"
	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// OpenML normalizes raw registry runs to the FAIR record form. A run is
// modeled as one trained model instance.
type OpenML struct {
	logger *slog.Logger
}

// NewOpenML creates the registry normalizer.
func NewOpenML(logger *slog.Logger) *OpenML {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenML{logger: logger}
}

// MapBasic translates the core fields of one raw run.
func (o *OpenML) MapBasic(raw openml.RawRun) schema.Record {
	if raw.Stub {
		r := schema.Stub(fair4ml.KindMLModel, openml.Platform, raw.ID(), nil)
		if raw.Error != "" {
			r.SetMetadata(fair4ml.Name, schema.FieldMetadata{
				Method: schema.MethodStubbed, Error: raw.Error,
			})
		}
		return r
	}

	r := schema.New(fair4ml.KindMLModel, openml.Platform, raw.ID())
	r.AddIdentifier(raw.URL())
	name := raw.FlowName
	if name == "" {
		name = "run " + raw.ID()
	}
	r.Set(fair4ml.Name, name, schema.Meta(schema.MethodParsed, 1.0, "flow_name"))
	r.Set(fair4ml.URL, raw.URL(), schema.Meta(schema.MethodParsed, 1.0, "run_id"))
	if raw.Uploader != "" {
		r.Set(fair4ml.SharedBy, raw.Uploader, schema.Meta(schema.MethodParsed, 1.0, "uploader"))
	}
	if raw.TaskType != "" {
		r.Set(fair4ml.ModelCategory, raw.TaskType, schema.Meta(schema.MethodParsed, 0.8, "task_type"))
	}
	if err := setDatetime(r, fair4ml.DateCreated, raw.UploadTime, "upload_time"); err != nil {
		o.logger.Debug("skipping unparseable upload time", "run", raw.RunID, "error", err)
	}

	r[fair4ml.MetricsKey] = map[string]string{
		"task_id": strconv.Itoa(raw.TaskID),
		"flow_id": strconv.Itoa(raw.FlowID),
	}
	return r
}

// MapAll maps a raw batch, one record per run.
func (o *OpenML) MapAll(raw []openml.RawRun) []schema.Record {
	records := make([]schema.Record, 0, len(raw))
	for _, run := range raw {
		records = append(records, o.MapBasic(run))
	}
	return records
}
