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

// Bandwidths in MHz a cell may advertise in its MIB.
var Bandwidths = []int{10, 20, 40, 80, 100}

const (
	MinSchedulingInfo   = 1
	MaxSchedulingInfo   = 10
	MinTrackingAreaCode = 1
	MaxTrackingAreaCode = 1000
	MaxAccessClass      = 10

	DefaultNetworkConfiguration = "Configured for high-speed data"
)

type MasterInfo struct {
	CellId         int    `json:"cellId"`
	PlmnId         PlmnId `json:"plmnId"`
	Bandwidth      int    `json:"bandwidth"`
	SchedulingInfo int    `json:"schedulingInfo"`
}

type SystemInfo struct {
	PlmnId               PlmnId `json:"plmnId"`
	TrackingAreaCode     int    `json:"trackingAreaCode"`
	CellBarred           bool   `json:"cellBarred"`
	AllowedAccessClasses []int  `json:"allowedAccessClasses"`
	CellType             string `json:"cellType"`
}

// AllowedAccessClasses returns a fresh 1..10 slice.
func AllowedAccessClasses() []int {
	classes := make([]int, 0, MaxAccessClass)
	for c := 1; c <= MaxAccessClass; c++ {
		classes = append(classes, c)
	}
	return classes
}

type RrcConnectionRequest struct {
	PlmnId         PlmnId `json:"plmnId"`
	CellId         int    `json:"cellId"`
	SignalStrength int    `json:"signalStrength"`
	Frequency      int    `json:"frequency"`
}

type RrcConnectionSetup struct {
	RrcConnectionRequest
	NetworkConfiguration string `json:"networkConfiguration"`
}
