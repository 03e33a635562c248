// Copyright 2025 EURECOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Contributors:
//   Giulio CAROTA
//   Thomas DU
//   Adlen KSENTINI

package simulator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/ran"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) SimulationStatusResponse {
	t.Helper()
	var resp SimulationStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestOamLifecycle(t *testing.T) {
	app := NewAttachSimulatorApp(&AppConfig{})
	router := app.Router()

	rec := doRequest(t, router, http.MethodGet, "/attach-simulator/v1/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, STOPPED, decodeStatus(t, rec).Status)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/start", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/attach-simulator/v1/report", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/configure", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	profile, err := json.Marshal(testProfile(models.SessionVariantCore,
		ran.UeConfig{Supi: knownSupi, SupportedPlmns: []models.PlmnId{"310260"}},
		ran.UeConfig{Supi: unknownSupi, SupportedPlmns: []models.PlmnId{"310260"}},
	))
	require.NoError(t, err)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/configure", string(profile))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decodeStatus(t, rec)
	assert.Equal(t, CONFIGURED, status.Status)
	assert.NotEmpty(t, status.SimulationId)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/start", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, STARTED, decodeStatus(t, rec).Status)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/configure", string(profile))
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "cannot reconfigure a started simulation")

	var reports []AttachReport
	assert.Eventually(t, func() bool {
		rec := doRequest(t, router, http.MethodGet, "/attach-simulator/v1/report", "")
		if rec.Code != http.StatusOK {
			return false
		}
		reports = nil
		return json.Unmarshal(rec.Body.Bytes(), &reports) == nil && len(reports) == 2
	}, 5*time.Second, 20*time.Millisecond)

	require.Len(t, reports, 2)
	assert.Equal(t, models.PduSessionEstablished, reports[0].SessionOutcome)
	assert.Equal(t, models.RmStateDeregistered, reports[1].RmState)
	assert.NotEmpty(t, reports[1].Error)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/stop", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, STOPPED, decodeStatus(t, rec).Status)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/stop", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/attach-simulator/v1/report", "")
	assert.Equal(t, http.StatusOK, rec.Code, "reports survive a stop")

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/start", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code, "a stopped simulation is not restarted")

	app.instanceMutex.RLock()
	instance := app.currentInstance
	app.instanceMutex.RUnlock()
	instance.Close()
}

func TestOamConfigureRejectsInvalidProfile(t *testing.T) {
	app := NewAttachSimulatorApp(&AppConfig{})
	router := app.Router()

	rec := doRequest(t, router, http.MethodPost, "/attach-simulator/v1/configure", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/configure", `{"plmn":"310260","sessionVariant":"relay"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, STOPPED, app.GetCurrentSimulationStatus().Status)

	oversized := testProfile(models.SessionVariantCore, ran.UeConfig{Supi: knownSupi})
	oversized.ProbePackets = 1 << 50
	profile, err := json.Marshal(oversized)
	require.NoError(t, err)
	rec = doRequest(t, router, http.MethodPost, "/attach-simulator/v1/configure", string(profile))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "probePackets")
	assert.Equal(t, STOPPED, app.GetCurrentSimulationStatus().Status)
}
