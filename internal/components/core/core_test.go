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

package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/ran"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

const (
	knownSupi   = "imsi-001010123456789"
	otherSupi   = "imsi-001310123456789"
	unknownSupi = "imsi-999"
	testPlmn    = models.PlmnId("310260")
)

type ueStub struct {
	supi string
	rm   models.RmState
	rrc  models.RrcState
}

func (u ueStub) Supi() string              { return u.supi }
func (u ueStub) RmState() models.RmState   { return u.rm }
func (u ueStub) RrcState() models.RrcState { return u.rrc }

func registered(supi string) ueStub {
	return ueStub{supi: supi, rm: models.RmStateRegistered, rrc: models.RrcStateConnected}
}

func provisioned(t *testing.T, ipam *utils.IPAllocator) *Core {
	t.Helper()
	c := NewCore(testPlmn, uuid.NewString(), ipam)
	require.NoError(t, c.Provision([]models.SubscriptionData{
		{Supi: knownSupi, Dnn: "internet", Snssai: models.Snssai{Sst: 1, Sd: "010203"}},
		{Supi: otherSupi, Dnn: "ims", Snssai: models.Snssai{Sst: 2}},
	}))
	return c
}

func newIpam(t *testing.T) *utils.IPAllocator {
	t.Helper()
	ipam, err := utils.NewIpamService("10.60.0.0/24")
	require.NoError(t, err)
	return ipam
}

func TestRegistrationGating(t *testing.T) {
	c := provisioned(t, nil)

	assert.True(t, c.Amf.ReceiveRegistrationRequest(knownSupi))
	assert.False(t, c.Amf.ReceiveRegistrationRequest(unknownSupi))

	records := c.Amf.Udm().Registrations()
	require.Len(t, records, 1)
	assert.Equal(t, knownSupi, records[0].Supi)
	assert.False(t, records[0].RegisteredAt.IsZero())
}

func TestUeRegistrationThroughAmf(t *testing.T) {
	c := provisioned(t, nil)

	rejected := ran.NewUserEquipment(ran.UeConfig{Supi: unknownSupi}, "core-test")
	assert.False(t, rejected.Register(c.Amf))
	assert.Equal(t, models.RmStateDeregistered, rejected.RmState())

	accepted := ran.NewUserEquipment(ran.UeConfig{Supi: knownSupi}, "core-test")
	assert.True(t, accepted.Register(c.Amf))
	assert.Equal(t, models.RmStateRegistered, accepted.RmState())
}

func TestAusfAuthenticate(t *testing.T) {
	udm := NewUdm(testPlmn)
	require.NoError(t, udm.Provision(models.SubscriptionData{Supi: knownSupi}))
	ausf := NewAusf(testPlmn)

	assert.Equal(t, models.AuthResult{Authenticated: true, Algorithm: "5G-AKA"}, ausf.Authenticate(knownSupi, udm))
	assert.Equal(t, models.AuthResult{Authenticated: false, Algorithm: "5G-AKA"}, ausf.Authenticate("imsi-00101012345678", udm))
	assert.Equal(t, "AUSF-310260", ausf.AusfId)
}

func TestUdm(t *testing.T) {
	udm := NewUdm(testPlmn)
	assert.Error(t, udm.Provision(models.SubscriptionData{}))
	require.NoError(t, udm.Provision(models.SubscriptionData{Supi: knownSupi, Dnn: "internet"}))

	assert.ErrorIs(t, udm.RegisterUe(unknownSupi), models.ErrUnknownSubscriber)
	assert.Empty(t, udm.Registrations())

	data, err := udm.GetSubscriptionData(knownSupi)
	require.NoError(t, err)
	data.Dnn = "changed"
	fresh, err := udm.GetSubscriptionData(knownSupi)
	require.NoError(t, err)
	assert.Equal(t, "internet", fresh.Dnn)

	_, err = udm.GetSubscriptionData(unknownSupi)
	assert.ErrorIs(t, err, models.ErrUnknownSubscriber)
}

func TestPduSessionBeforeRegistration(t *testing.T) {
	testCases := []struct {
		name string
		ipam bool
		rrc  models.RrcState
	}{
		{name: "without smf, rrc connected", rrc: models.RrcStateConnected},
		{name: "without smf, rrc idle", rrc: models.RrcStateIdle},
		{name: "with smf, rrc connected", ipam: true, rrc: models.RrcStateConnected},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ipam *utils.IPAllocator
			if tc.ipam {
				ipam = newIpam(t)
			}
			c := provisioned(t, ipam)

			outcome, err := c.Amf.ProcessPduSessionEstablishment(ueStub{supi: knownSupi, rm: models.RmStateDeregistered, rrc: tc.rrc})
			assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
			assert.Equal(t, models.PduSessionFailed, outcome)
			if smf := c.Amf.Smf(); smf != nil {
				assert.Empty(t, smf.Sessions())
			}
		})
	}
}

func TestPduSessionWithoutSmf(t *testing.T) {
	c := provisioned(t, nil)
	outcome, err := c.Amf.ProcessPduSessionEstablishment(registered(knownSupi))
	require.NoError(t, err)
	assert.Equal(t, models.PduSessionEstablished, outcome)
}

func TestPduSessionThroughSmf(t *testing.T) {
	c := provisioned(t, newIpam(t))
	smf := c.Amf.Smf()
	require.NotNil(t, smf)

	outcome, err := c.Amf.ProcessPduSessionEstablishment(registered(knownSupi))
	require.NoError(t, err)
	assert.Equal(t, models.PduSessionEstablished, outcome)

	sess, ok := smf.LatestSession(knownSupi)
	require.True(t, ok)
	assert.Equal(t, int32(1), sess.Info.Id)
	assert.Equal(t, "10.60.0.1", sess.Info.Ipv4)
	assert.Equal(t, "internet", sess.Info.Dnn)
	assert.Equal(t, models.Snssai{Sst: 1, Sd: "010203"}, sess.Info.Snssai)
	assert.Equal(t, []string{sess.Info.Tunnel}, smf.ReportedTunnels())

	tunnel, ok := sess.Anchor.Tunnel()
	require.True(t, ok)
	assert.Equal(t, sess.Info.Teid, tunnel.Teid)
	assert.Equal(t, sess.Anchor.UpfId, tunnel.AnchorId)
	assert.Equal(t, sess.Client.UpfId, tunnel.PeerId)
	assert.Equal(t, tunnel.String(), sess.Info.Tunnel)

	second, err := smf.Process(registered(knownSupi), models.SubscriptionData{Supi: knownSupi})
	require.NoError(t, err)
	assert.Equal(t, int32(2), second.Id)
	assert.NotEqual(t, sess.Info.Teid, second.Teid)
	assert.NotEqual(t, sess.Info.Ipv4, second.Ipv4)
	assert.Len(t, smf.Sessions(), 2)

	require.NoError(t, smf.Release(knownSupi, 1))
	assert.Error(t, smf.Release(knownSupi, 1))
	_, ok = smf.Session(knownSupi, 1)
	assert.False(t, ok)
	assert.Len(t, smf.Sessions(), 1)
}

func TestSmfRejectsUnregisteredUe(t *testing.T) {
	smf := NewSmf(testPlmn, newIpam(t))
	_, err := smf.Process(ueStub{supi: knownSupi, rm: models.RmStateDeregistered}, models.SubscriptionData{Supi: knownSupi})
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)
	assert.Empty(t, smf.ReportedTunnels())
}

func TestSmfAddressPoolExhausted(t *testing.T) {
	ipam, err := utils.NewIpamService("10.60.0.0/30")
	require.NoError(t, err)
	smf := NewSmf(testPlmn, ipam)

	for _, supi := range []string{knownSupi, otherSupi} {
		_, err := smf.Process(registered(supi), models.SubscriptionData{Supi: supi})
		require.NoError(t, err)
	}
	_, err = smf.Process(registered("imsi-001010000000003"), models.SubscriptionData{})
	assert.ErrorIs(t, err, utils.ErrPoolExhausted)
}

func TestNorthboundApis(t *testing.T) {
	c := provisioned(t, newIpam(t))
	_, err := c.Amf.Smf().Process(registered(knownSupi), models.SubscriptionData{Supi: knownSupi})
	require.NoError(t, err)
	r := mux.NewRouter()
	c.RegisterNorthboundAPIs(r)

	testCases := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
	}{
		{name: "sm data", method: http.MethodGet, path: "/nudm-sdm/v2/" + knownSupi + "/sm-data", wantCode: http.StatusOK},
		{name: "sm data unknown", method: http.MethodGet, path: "/nudm-sdm/v2/" + unknownSupi + "/sm-data", wantCode: http.StatusNotFound},
		{
			name:     "amf subscription",
			method:   http.MethodPost,
			path:     "/namf-evts/v1/subscriptions",
			body:     `{"subscription":{"eventList":[{"type":"REGISTRATION_STATE_REPORT"}],"eventNotifyUri":"http://127.0.0.1:1/cb"}}`,
			wantCode: http.StatusCreated,
		},
		{name: "amf subscription missing", method: http.MethodPost, path: "/namf-evts/v1/subscriptions", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "amf subscription garbage", method: http.MethodPost, path: "/namf-evts/v1/subscriptions", body: `{`, wantCode: http.StatusBadRequest},
		{
			name:     "smf subscription",
			method:   http.MethodPost,
			path:     "/nsmf-event-exposure/v1/subscriptions",
			body:     `{"notifUri":"http://127.0.0.1:1/cb","eventSubs":[{"event":"PDU_SES_EST"}]}`,
			wantCode: http.StatusCreated,
		},
		{name: "smf subscription without events", method: http.MethodPost, path: "/nsmf-event-exposure/v1/subscriptions", body: `{"notifUri":"http://x"}`, wantCode: http.StatusBadRequest},
		{name: "smf sessions", method: http.MethodGet, path: "/nsmf-pdusession/v1/sm-contexts", wantCode: http.StatusOK},
		{name: "smf session by address", method: http.MethodGet, path: "/nsmf-pdusession/v1/sm-contexts?ipv4=10.60.0.1", wantCode: http.StatusOK},
		{name: "smf session by unknown address", method: http.MethodGet, path: "/nsmf-pdusession/v1/sm-contexts?ipv4=10.60.0.99", wantCode: http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/nudm-sdm/v2/"+knownSupi+"/sm-data", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var data models.SubscriptionData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	assert.Equal(t, "internet", data.Dnn)

	req = httptest.NewRequest(http.MethodGet, "/nsmf-pdusession/v1/sm-contexts?ipv4=10.60.0.1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var sessions []models.PduSessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, knownSupi, sessions[0].Supi)

	c.Amf.SubMutex.RLock()
	assert.Equal(t, []string{"http://127.0.0.1:1/cb"}, c.Amf.Subscriptions[models.AmfEventRegistrationState])
	c.Amf.SubMutex.RUnlock()
}

func TestEventExposure(t *testing.T) {
	var (
		mu     sync.Mutex
		amfEvt []models.AmfEventReport
		smfEvt []models.EventNotification
	)
	callback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.URL.Path {
		case "/amf":
			var n models.AmfEventNotification
			if json.NewDecoder(r.Body).Decode(&n) == nil {
				amfEvt = append(amfEvt, n.ReportList...)
			}
		case "/smf":
			var n models.NsmfEventExposureNotification
			if json.NewDecoder(r.Body).Decode(&n) == nil {
				smfEvt = append(smfEvt, n.EventNotifs...)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer callback.Close()

	c := provisioned(t, newIpam(t))
	require.NoError(t, c.Start())
	t.Cleanup(func() { assert.NoError(t, c.Stop()) })

	c.Amf.SubMutex.Lock()
	c.Amf.Subscriptions[models.AmfEventRegistrationState] = []string{callback.URL + "/amf"}
	c.Amf.SubMutex.Unlock()
	smf := c.Amf.Smf()
	smf.SubMutex.Lock()
	smf.Subscriptions[models.SmfEventPduSessionEstablishment] = []string{callback.URL + "/smf"}
	smf.SubMutex.Unlock()

	ue := ran.NewUserEquipment(ran.UeConfig{Supi: knownSupi}, c.SimulationId)
	ue.PowerUp(c.Amf.TaskId())
	require.True(t, ue.Register(c.Amf))
	_, err := ue.RequestPduSession(c.Amf)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(amfEvt) == 1 && len(smfEvt) == 1
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if assert.Len(t, amfEvt, 1) {
		assert.Equal(t, knownSupi, amfEvt[0].Supi)
		assert.Equal(t, models.RmStateRegistered, amfEvt[0].RmState)
	}
	if assert.Len(t, smfEvt, 1) {
		assert.Equal(t, models.SmfEventPduSessionEstablishment, smfEvt[0].Event)
		assert.Equal(t, "10.60.0.1", smfEvt[0].Ipv4Addr)
	}
}

func TestCoreStopReleasesTasks(t *testing.T) {
	c := provisioned(t, newIpam(t))
	require.NoError(t, c.Start())
	assert.Error(t, c.Start(), "task names are taken while running")

	require.NoError(t, c.Stop())
	assert.Empty(t, c.Amf.TaskId())
	assert.NoError(t, c.Stop(), "stopping twice is a no-op")

	require.NoError(t, c.Start(), "names are free again after Stop")
	require.NoError(t, c.Stop())
}
