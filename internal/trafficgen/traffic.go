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
	"fmt"
	"time"
)

// Direction of a generated packet relative to the UE.
type Direction int

const (
	Downlink Direction = iota
	Uplink
	Alternating
)

// Packet is one user-plane packet emitted by a generator.
type Packet struct {
	SizeBytes int
	Timestamp time.Time
	Uplink    bool
}

// Generator is polled with a (possibly virtual) clock and emits a packet
// when one is due.
type Generator interface {
	NextPacket(now time.Time) *Packet
}

type Profile string

const (
	ProfileWeb   Profile = "web"
	ProfileVideo Profile = "video"
	ProfileIoT   Profile = "iot"
	ProfileSip   Profile = "sip"
)

// New returns a generator for profile. An empty profile means web.
func New(profile Profile) (Generator, error) {
	switch profile {
	case ProfileWeb, "":
		return NewWebTraffic(2e6, 1200, 6*time.Second, 10*time.Second), nil
	case ProfileVideo:
		return NewVideoTraffic(8e6, 1300), nil
	case ProfileIoT:
		return NewIoTTraffic(1000, 15*time.Second), nil
	case ProfileSip:
		return NewVoIPTraffic(600, 50), nil
	default:
		return nil, fmt.Errorf("unknown traffic profile %q", profile)
	}
}

// Collect advances a virtual clock from start in steps of step until count
// packets were emitted or maxSteps polls were spent.
func Collect(gen Generator, start time.Time, step time.Duration, count, maxSteps int) []Packet {
	var packets []Packet
	now := start
	for i := 0; i < maxSteps && len(packets) < count; i++ {
		if pkt := gen.NextPacket(now); pkt != nil {
			packets = append(packets, *pkt)
		}
		now = now.Add(step)
	}
	return packets
}
