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

import "time"

// WebTraffic alternates downlink bursts with idle periods.
type WebTraffic struct {
	AvgBitrate    float64 // bits per second during a burst
	PacketSize    int
	BurstDuration time.Duration
	IdleDuration  time.Duration

	lastPacketTime time.Time
	periodEnd      time.Time
	inBurst        bool
	started        bool
}

func NewWebTraffic(bitrate float64, pktSize int, burst, idle time.Duration) *WebTraffic {
	return &WebTraffic{
		AvgBitrate:    bitrate,
		PacketSize:    pktSize,
		BurstDuration: burst,
		IdleDuration:  idle,
	}
}

func (w *WebTraffic) NextPacket(now time.Time) *Packet {
	switch {
	case !w.started:
		w.started = true
		w.inBurst = true
		w.periodEnd = now.Add(w.BurstDuration)
	case now.After(w.periodEnd):
		w.inBurst = !w.inBurst
		if w.inBurst {
			w.periodEnd = now.Add(w.BurstDuration)
		} else {
			w.periodEnd = now.Add(w.IdleDuration)
		}
	}
	if !w.inBurst {
		return nil
	}

	interval := time.Duration(float64(w.PacketSize*8) / w.AvgBitrate * 1e9)
	if !w.lastPacketTime.IsZero() && now.Sub(w.lastPacketTime) < interval {
		return nil
	}
	w.lastPacketTime = now
	return &Packet{
		SizeBytes: w.PacketSize,
		Timestamp: now,
	}
}
