package checklistbank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/biodiv-client/internal/testutil"
	"github.com/Sternrassler/biodiv-client/pkg/client"
	"github.com/Sternrassler/biodiv-client/pkg/pagination"
	"github.com/Sternrassler/biodiv-client/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, mock *testutil.MockAPI) *Service {
	t.Helper()

	cfg := client.DefaultConfig("BiodivTest/1.0.0 (test@example.com)")
	cfg.BaseURLs = map[string]string{client.ServiceChecklistBank: mock.URL()}
	cfg.Timeout = 5 * time.Second

	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return NewService(c, pagination.DefaultConfig())
}

func datasetRecord(i int) any {
	return map[string]any{"key": 1000 + i, "alias": "DS" + string(rune('A'+i%26)), "title": "Dataset", "size": i}
}

func TestSearchDatasets(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPaged(DatasetEndpoint, testutil.PagedEndpoint{Total: 1200, Record: datasetRecord})

	svc := newTestService(t, mock)

	filter := query.NewDatasetFilter()
	filter.Alias = "COL"

	results, err := svc.SearchDatasets(context.Background(), filter, nil)
	require.NoError(t, err)
	require.Len(t, results, 1200)
	assert.Equal(t, 2000, filter.Offset)

	datasets, err := DecodeDatasets(results)
	require.NoError(t, err)
	assert.Equal(t, 1000, datasets[0].Key)
	assert.Equal(t, 2199, datasets[1199].Key)
}

func TestSearchDatasetsConcurrent(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPaged(DatasetEndpoint, testutil.PagedEndpoint{Total: 3500, Record: datasetRecord})

	svc := newTestService(t, mock)

	results, err := svc.SearchDatasetsConcurrent(context.Background(), query.NewDatasetFilter(), pagination.Size(2500), 4)
	require.NoError(t, err)

	datasets, err := DecodeDatasets(results)
	require.NoError(t, err)
	require.Len(t, datasets, 2500)
	for i, d := range datasets {
		require.Equal(t, 1000+i, d.Key)
	}
}

func TestSearchDatasets_InvalidFilter(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	svc := newTestService(t, mock)

	filter := query.NewDatasetFilter()
	filter.Code = "KLINGON"

	_, err := svc.SearchDatasets(context.Background(), filter, nil)
	require.ErrorIs(t, err, pagination.ErrInvalidQuery)

	_, err = svc.SearchDatasetsConcurrent(context.Background(), filter, nil, 2)
	require.ErrorIs(t, err, pagination.ErrInvalidQuery)

	assert.Equal(t, 0, mock.RequestCount())
}

func TestGetKey(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	var gotQuery map[string][]string
	mock.SetHandler(NameUsageSearchEndpoint, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"offset":0,"limit":1,"total":1,"result":[{"id":"x","usage":{"id":"H6","datasetKey":3}}]}`))
	})

	svc := newTestService(t, mock)

	datasetKey, taxonID, err := svc.GetKey(context.Background(), "class", "Insecta")
	require.NoError(t, err)
	assert.Equal(t, 3, datasetKey)
	assert.Equal(t, "H6", taxonID)

	assert.Equal(t, []string{"Insecta"}, gotQuery["q"])
	assert.Equal(t, []string{"CLASS"}, gotQuery["minRank"])
	assert.Equal(t, []string{"CLASS"}, gotQuery["maxRank"])
	assert.Equal(t, []string{"1"}, gotQuery["limit"])
}

func TestGetKey_NotFound(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetJSON(NameUsageSearchEndpoint, map[string]any{"offset": 0, "limit": 1, "total": 0, "empty": true})

	svc := newTestService(t, mock)

	_, _, err := svc.GetKey(context.Background(), query.RankFamily, "Nonexistidae")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetKey_TransportError(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse(NameUsageSearchEndpoint, testutil.MockResponse{StatusCode: http.StatusInternalServerError})

	svc := newTestService(t, mock)

	_, _, err := svc.GetKey(context.Background(), query.RankClass, "Insecta")

	var transportErr *client.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
}

func TestMatchTaxon(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	var gotQuery map[string][]string
	mock.SetHandler("/dataset/3/match/nameusage", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"match":true,"type":"exact","usage":{"id":"H6","name":{"scientificName":"Insecta"}}}`))
	})

	svc := newTestService(t, mock)

	filter := query.NewTaxonMatchFilter("Insecta")
	filter.Class = "Insecta"

	match, err := svc.MatchTaxon(context.Background(), filter)
	require.NoError(t, err)

	var doc struct {
		Match bool   `json:"match"`
		Type  string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(match, &doc))
	assert.True(t, doc.Match)
	assert.Equal(t, "exact", doc.Type)

	assert.Equal(t, []string{"Insecta"}, gotQuery["scientificName"])
	assert.Equal(t, []string{"Insecta"}, gotQuery["class"])
	assert.NotContains(t, gotQuery, "key")
}

func TestMatchTaxon_InvalidKey(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	svc := newTestService(t, mock)

	filter := query.NewTaxonMatchFilter("Insecta")
	filter.Key = 0

	_, err := svc.MatchTaxon(context.Background(), filter)
	require.ErrorIs(t, err, pagination.ErrInvalidQuery)
	assert.Equal(t, 0, mock.RequestCount())
}
