package bioimage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbmed-semtec/mlentory/config"
)

const collectionDoc = `{"collection":[
	{"id":"ilastik/pixel","type":"model","name":"Pixel Classifier","description":"Semantic segmentation of microscopy images.","license":"MIT"},
	{"id":"zero/notebook","type":"notebook","name":"ZeroCostDL4Mic","description":"Training notebook"},
	{"id":"ilastik/bare","type":"model","name":"","description":""},
	{"id":"deepimagej/unet","type":"model","name":"U-Net","description":"Nuclei segmentation for fluorescence microscopy.","license":"BSD-3-Clause"},
	{"id":"deepimagej/unet","type":"model","name":"U-Net","description":"duplicate"}
]}`

func fakeCatalog(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, collectionDoc)
	}))
}

func TestFetchPrimaryKeepsInformativeModels(t *testing.T) {
	server := fakeCatalog(t)
	defer server.Close()

	e := NewExtractor(config.PlatformConfig{BaseURL: server.URL}, nil)
	entries, err := e.FetchPrimary(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "deepimagej/unet", entries[0].ID)
	assert.Equal(t, "ilastik/pixel", entries[1].ID)
}

func TestFetchPrimaryHonorsParentAndLimit(t *testing.T) {
	server := fakeCatalog(t)
	defer server.Close()

	e := NewExtractor(config.PlatformConfig{BaseURL: server.URL, ParentID: "ilastik", NumModels: 5}, nil)
	entries, err := e.FetchPrimary(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "ilastik/pixel", entries[0].ID)
}

func TestFetchSpecificEntriesStubsMissing(t *testing.T) {
	server := fakeCatalog(t)
	defer server.Close()

	e := NewExtractor(config.PlatformConfig{BaseURL: server.URL}, nil)
	entries, err := e.FetchSpecificEntries(context.Background(), []string{"ilastik/pixel", "gone/model"})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.True(t, entries[0].Stub)
	assert.Equal(t, "gone/model", entries[0].ID)
	assert.False(t, entries[1].Stub)
}
