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

package trafficgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	for _, profile := range []Profile{"", ProfileWeb, ProfileVideo, ProfileIoT, ProfileSip} {
		gen, err := New(profile)
		require.NoError(t, err, profile)
		assert.NotNil(t, gen)
	}
	_, err := New("ftp")
	assert.Error(t, err)
}

func TestPeriodicTraffic(t *testing.T) {
	testCases := []struct {
		name     string
		gen      *PeriodicTraffic
		interval time.Duration
		uplinks  []bool
	}{
		{
			name:     "video",
			gen:      NewVideoTraffic(8e6, 1000),
			interval: time.Millisecond,
			uplinks:  []bool{false, false, false, false},
		},
		{
			name:     "voip",
			gen:      NewVoIPTraffic(600, 50),
			interval: 20 * time.Millisecond,
			uplinks:  []bool{false, true, false, true},
		},
		{
			name:     "iot",
			gen:      NewIoTTraffic(1000, 15*time.Second),
			interval: 15 * time.Second,
			uplinks:  []bool{true, true, true, true},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.interval, tc.gen.Interval)

			first := tc.gen.NextPacket(epoch)
			require.NotNil(t, first, "first poll emits immediately")
			assert.Nil(t, tc.gen.NextPacket(epoch.Add(tc.interval/2)))

			packets := []*Packet{first}
			for i := 1; i < len(tc.uplinks); i++ {
				pkt := tc.gen.NextPacket(epoch.Add(time.Duration(i) * tc.interval))
				require.NotNil(t, pkt)
				packets = append(packets, pkt)
			}
			for i, pkt := range packets {
				assert.Equal(t, tc.uplinks[i], pkt.Uplink, "packet %d", i)
				assert.Equal(t, tc.gen.PacketSize, pkt.SizeBytes)
			}
		})
	}
}

func TestWebTrafficBurstThenIdle(t *testing.T) {
	gen := NewWebTraffic(1e6, 1250, time.Second, 2*time.Second) // one packet every 10ms

	require.NotNil(t, gen.NextPacket(epoch))
	assert.Nil(t, gen.NextPacket(epoch.Add(5*time.Millisecond)))
	assert.NotNil(t, gen.NextPacket(epoch.Add(10*time.Millisecond)))

	// idle period after the burst
	assert.Nil(t, gen.NextPacket(epoch.Add(1100*time.Millisecond)))
	assert.Nil(t, gen.NextPacket(epoch.Add(2*time.Second)))
	// next burst
	assert.NotNil(t, gen.NextPacket(epoch.Add(3200*time.Millisecond)))
}

func TestCollect(t *testing.T) {
	gen, err := New(ProfileSip)
	require.NoError(t, err)

	packets := Collect(gen, epoch, time.Millisecond, 5, 1000)
	require.Len(t, packets, 5)
	for i := 1; i < len(packets); i++ {
		assert.Equal(t, 20*time.Millisecond, packets[i].Timestamp.Sub(packets[i-1].Timestamp))
	}

	iot, err := New(ProfileIoT)
	require.NoError(t, err)
	assert.Len(t, Collect(iot, epoch, time.Millisecond, 5, 1000), 1, "step budget bounds the sweep")
}

func TestCollectDoesNotPreallocateCount(t *testing.T) {
	gen, err := New(ProfileSip)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		packets := Collect(gen, epoch, time.Millisecond, 1<<50, 100)
		assert.Len(t, packets, 5)
	})
}
