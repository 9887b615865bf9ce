package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/zbmed-semtec/mlentory/schema"
	"github.com/zbmed-semtec/mlentory/vocabulary/fair4ml"
)

// DefaultSPDXBaseURL serves the SPDX license list.
const DefaultSPDXBaseURL = "https://spdx.org"

// LicenseClient resolves license identifiers against the SPDX license
// list. The list index is fetched once per process and matched
// case-insensitively.
type LicenseClient struct {
	baseURL  string
	http     *HTTPClient
	platform string
	logger   *slog.Logger

	once   sync.Once
	index  map[string]spdxLicense
	idxErr error
}

// NewLicenseClient creates an SPDX license client.
func NewLicenseClient(baseURL, platform string, logger *slog.Logger) *LicenseClient {
	if baseURL == "" {
		baseURL = DefaultSPDXBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LicenseClient{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		http:     NewHTTPClient("spdx", logger),
		platform: platform,
		logger:   logger,
	}
}

type spdxLicense struct {
	LicenseID string `json:"licenseId"`
	Name      string `json:"name"`
	Reference string `json:"reference"`
	OSI       bool   `json:"isOsiApproved"`
}

type spdxList struct {
	Licenses []spdxLicense `json:"licenses"`
}

// FetchLicenses resolves license ids, stubbing ids absent from the SPDX
// list.
func (l *LicenseClient) FetchLicenses(ctx context.Context, ids []string, threads int) ([]schema.Record, error) {
	if err := l.ensureIndex(ctx); err != nil {
		l.logger.Warn("spdx list unavailable, stubbing all licenses", "error", err)
	}
	return fetchAll(ctx, ids, threads, l.fetchOne, func(id string, err error) schema.Record {
		l.logger.Debug("stubbing license", "license", id, "error", err)
		return schema.Stub(fair4ml.KindLicense, l.platform, id, err)
	})
}

func (l *LicenseClient) fetchOne(_ context.Context, id string) (schema.Record, error) {
	license, ok := l.index[strings.ToLower(id)]
	if !ok {
		return nil, fmt.Errorf("license %q: %w", id, ErrNotFound)
	}

	r := schema.New(fair4ml.KindLicense, l.platform, id)
	r.AddIdentifier(license.Reference)
	r.Set(fair4ml.Name, license.Name, schema.Meta(schema.MethodAPI, 1.0, "name"))
	r.Set(fair4ml.URL, license.Reference, schema.Meta(schema.MethodAPI, 1.0, "reference"))
	r.Set(fair4ml.Version, license.LicenseID, schema.Meta(schema.MethodAPI, 1.0, "licenseId"))
	if license.OSI {
		r.Set(fair4ml.Comment, "OSI approved", schema.Meta(schema.MethodAPI, 1.0, "isOsiApproved"))
	}
	return r, nil
}

func (l *LicenseClient) ensureIndex(ctx context.Context) error {
	l.once.Do(func() {
		var list spdxList
		if err := l.http.GetJSON(ctx, l.baseURL+"/licenses/licenses.json", nil, &list); err != nil {
			l.idxErr = err
			l.index = map[string]spdxLicense{}
			return
		}
		l.index = make(map[string]spdxLicense, len(list.Licenses))
		for _, license := range list.Licenses {
			l.index[strings.ToLower(license.LicenseID)] = license
		}
		l.logger.Info("loaded spdx license list", "licenses", len(l.index))
	})
	return l.idxErr
}
