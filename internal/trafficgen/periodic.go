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

// PeriodicTraffic emits fixed-size packets at a constant interval.
type PeriodicTraffic struct {
	PacketSize int
	Interval   time.Duration
	Direction  Direction

	lastPacketTime time.Time
	sent           int
}

// NewVideoTraffic is a steady downlink stream at bitrate bits per second.
func NewVideoTraffic(bitrate float64, pktSize int) *PeriodicTraffic {
	pktPerSec := bitrate / float64(pktSize*8)
	return &PeriodicTraffic{
		PacketSize: pktSize,
		Interval:   time.Duration(1e9/pktPerSec) * time.Nanosecond,
		Direction:  Downlink,
	}
}

// NewVoIPTraffic is a symmetric voice flow of small packets.
func NewVoIPTraffic(pktSize int, pktRate float64) *PeriodicTraffic {
	return &PeriodicTraffic{
		PacketSize: pktSize,
		Interval:   time.Duration(1e9/pktRate) * time.Nanosecond,
		Direction:  Alternating,
	}
}

// NewIoTTraffic is an uplink heartbeat.
func NewIoTTraffic(pktSize int, interval time.Duration) *PeriodicTraffic {
	return &PeriodicTraffic{
		PacketSize: pktSize,
		Interval:   interval,
		Direction:  Uplink,
	}
}

func (p *PeriodicTraffic) NextPacket(now time.Time) *Packet {
	if p.sent > 0 && now.Sub(p.lastPacketTime) < p.Interval {
		return nil
	}
	p.lastPacketTime = now
	ul := p.Direction == Uplink || (p.Direction == Alternating && p.sent%2 == 1)
	p.sent++
	return &Packet{
		SizeBytes: p.PacketSize,
		Timestamp: now,
		Uplink:    ul,
	}
}
