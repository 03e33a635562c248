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

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeUe struct {
	rm  RmState
	rrc RrcState
}

func (f fakeUe) Supi() string       { return "imsi-001010000000001" }
func (f fakeUe) RmState() RmState   { return f.rm }
func (f fakeUe) RrcState() RrcState { return f.rrc }

func TestPlmnId(t *testing.T) {
	testCases := []struct {
		name string
		plmn PlmnId
		mcc  string
		mnc  string
	}{
		{name: "two digit mnc", plmn: "20893", mcc: "208", mnc: "93"},
		{name: "three digit mnc", plmn: "310260", mcc: "310", mnc: "260"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.mcc, tc.plmn.Mcc())
			assert.Equal(t, tc.mnc, tc.plmn.Mnc())
		})
	}

	list := PlmnList{"310260", "40006"}
	assert.True(t, list.Contains("40006"))
	assert.False(t, list.Contains("310560"))
	assert.False(t, PlmnList(nil).Contains("310260"))
}

func TestAllowedAccessClasses(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, AllowedAccessClasses())
}

func TestCheckPduSessionPrecondition(t *testing.T) {
	testCases := []struct {
		name    string
		ue      fakeUe
		wantErr bool
	}{
		{name: "registered", ue: fakeUe{rm: RmStateRegistered, rrc: RrcStateConnected}},
		{name: "registered while idle", ue: fakeUe{rm: RmStateRegistered, rrc: RrcStateIdle}},
		{name: "connected but deregistered", ue: fakeUe{rm: RmStateDeregistered, rrc: RrcStateConnected}, wantErr: true},
		{name: "idle and deregistered", ue: fakeUe{rm: RmStateDeregistered, rrc: RrcStateIdle}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPduSessionPrecondition(tc.ue)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStateTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpStatsReport(t *testing.T) {
	stats := NewUpStats(0x10, 1)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	stats.NewPacket(false, 1000, start)
	single := stats.GenerateReport()
	assert.Zero(t, single.Bitrate)
	assert.Zero(t, single.PacketRate)

	stats.NewPacket(true, 500, start.Add(500*time.Millisecond))
	stats.NewPacket(false, 1000, start.Add(time.Second))

	report := stats.GenerateReport()
	assert.Equal(t, int64(3), report.NumOfPackets)
	assert.Equal(t, int64(2500), report.TotalBytes)
	assert.Equal(t, int64(1), report.NumUlPackets)
	assert.Equal(t, int64(2000), report.TotalDlBytes)
	assert.InDelta(t, 20000.0, report.Bitrate, 1e-9)
	assert.InDelta(t, 3.0, report.PacketRate, 1e-9)
	assert.Contains(t, report.Dumps(), "TEID:        0x00000010")
}

func TestUeStateString(t *testing.T) {
	assert.Equal(t, "DETACHED", Detached.String())
	assert.Equal(t, "PDU_SESSION_ACTIVE", PduSessionActive.String())
}
