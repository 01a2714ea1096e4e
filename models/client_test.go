package models_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-dhis2bridge/models"
)

func testClient(ts *httptest.Server, allowedCodes ...string) *models.Client {
	rest := resty.New()
	rest.SetBaseURL(ts.URL)
	if len(allowedCodes) == 0 {
		allowedCodes = []string{models.FutureConflictCode}
	}
	return &models.Client{
		RestClient:           rest,
		BaseURL:              ts.URL,
		AllowedConflictCodes: allowedCodes,
	}
}

func jsonServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestGetMe(t *testing.T) {
	ts := jsonServer(http.StatusOK,
		`{"name": "Mirror PAT", "organisationUnits": [{"id": "OU123456789"}]}`)
	defer ts.Close()

	me, err := testClient(ts).GetMe()
	require.NoError(t, err)
	assert.Equal(t, "Mirror PAT", me.Name)
	require.Len(t, me.OrganisationUnits, 1)
	assert.Equal(t, "OU123456789", me.OrganisationUnits[0].ID)
}

func TestClientUnauthorized(t *testing.T) {
	ts := jsonServer(http.StatusUnauthorized, `{"message": "token expired"}`)
	defer ts.Close()

	_, err := testClient(ts).GetMe()
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestClientNotFound(t *testing.T) {
	ts := jsonServer(http.StatusNotFound, `{}`)
	defer ts.Close()

	_, err := testClient(ts).GetDataElement("gone")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestClientServerError(t *testing.T) {
	ts := jsonServer(http.StatusInternalServerError, `oops`)
	defer ts.Close()

	_, err := testClient(ts).GetDataSets()
	var apiErr *models.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

const futureConflictBody = `{
	"status": "WARNING",
	"response": {
		"status": "WARNING",
		"importCount": {"imported": 2, "updated": 0, "ignored": 1, "total": 3},
		"conflicts": [
			{"object": "202512", "value": "Period not open", "errorCode": "E7641"}
		]
	}
}`

func TestPostDataValueSetFuturePeriodConflict(t *testing.T) {
	// a 409 whose conflicts are all about values beyond the accepted
	// period window is a partial success: the remote dropped those
	// values and imported the rest
	ts := jsonServer(http.StatusConflict, futureConflictBody)
	defer ts.Close()

	summary, err := testClient(ts).PostDataValueSet(&models.DataValueSetRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Response.ImportCount.Imported)
	assert.Equal(t, 1, summary.Response.ImportCount.Ignored)
}

func TestPostDataValueSetUnhandledConflict(t *testing.T) {
	ts := jsonServer(http.StatusConflict, `{
		"response": {
			"conflicts": [
				{"object": "dv1", "value": "Data element not found", "errorCode": "E7610"}
			]
		}
	}`)
	defer ts.Close()

	_, err := testClient(ts).PostDataValueSet(&models.DataValueSetRequest{})
	var conflictErr *models.UnhandledConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Contains(t, conflictErr.Body, "E7610")
}

func TestPostDataValueSetConfiguredConflictCodes(t *testing.T) {
	// the allow list is configurable, so the same body flips between
	// partial success and failure with the configuration
	ts := jsonServer(http.StatusConflict, futureConflictBody)
	defer ts.Close()

	_, err := testClient(ts, "E9999").PostDataValueSet(&models.DataValueSetRequest{})
	var conflictErr *models.UnhandledConflictError
	assert.True(t, errors.As(err, &conflictErr))

	_, err = testClient(ts, "E9999", "E7641").PostDataValueSet(&models.DataValueSetRequest{})
	assert.NoError(t, err)
}

func TestGetDataSetDetail(t *testing.T) {
	ts := jsonServer(http.StatusOK, `{
		"id": "DS1",
		"displayName": "Morbidity",
		"periodType": "Monthly",
		"categoryCombo": {"id": "CC1"},
		"dataSetElements": [
			{"dataElement": {"id": "DE1"}},
			{"dataElement": {"id": "DE2"}}
		]
	}`)
	defer ts.Close()

	detail, err := testClient(ts).GetDataSet("DS1")
	require.NoError(t, err)
	assert.Equal(t, "Morbidity", detail.DisplayName)
	assert.Equal(t, "Monthly", detail.PeriodType)
	assert.Equal(t, "CC1", detail.CategoryCombo.ID)
	require.Len(t, detail.DataSetElements, 2)
	assert.Equal(t, "DE2", detail.DataSetElements[1].DataElement.ID)
}
