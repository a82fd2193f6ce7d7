package responseformat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type payload struct {
	AnnualKWh float64   `json:"annual_kwh"`
	Monthly   []float64 `json:"monthly_kwh"`
}

func TestWriteResponseJSON(t *testing.T) {
	f := NewFormatter(true)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/solar-estimate", nil)

	require.NoError(t, f.WriteResponse(rec, req, http.StatusOK, payload{AnnualKWh: 12.5}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 12.5, got["annual_kwh"])
}

func TestWriteResponseMsgPack(t *testing.T) {
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/x?format=msgpack", nil),
		func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/x", nil)
			r.Header.Set("Accept", ContentTypeMsgPack)
			return r
		}(),
	} {
		rec := httptest.NewRecorder()
		require.NoError(t, NewFormatter(false).WriteResponse(rec, req, http.StatusCreated, payload{AnnualKWh: 3, Monthly: []float64{1, 2}}))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, ContentTypeMsgPack, rec.Header().Get("Content-Type"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

		var got map[string]any
		require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &got))
		assert.Contains(t, got, "annual_kwh", "json tags name msgpack keys")
		assert.Contains(t, got, "monthly_kwh")
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)

	require.NoError(t, NewFormatter(false).WriteError(rec, req, http.StatusUnprocessableEntity,
		"invalid config", map[string]string{"latitude": "must be between -90 and 90"}))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid config", body.Error)
	assert.Contains(t, body.Fields, "latitude")
}

func TestEncodeMsgPack(t *testing.T) {
	b, err := EncodeMsgPack(payload{AnnualKWh: 7})
	require.NoError(t, err)

	var got payload
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	require.NoError(t, dec.Decode(&got))
	assert.Equal(t, 7.0, got.AnnualKWh)
}
