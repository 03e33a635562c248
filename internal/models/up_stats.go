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
	"fmt"
	"time"
)

// UpStats accumulates the user-plane packets seen on one GTP-U tunnel.
type UpStats struct {
	Teid         uint32    `json:"teid"`
	PduSessId    int32     `json:"pduSessionId"`
	NumOfPackets int64     `json:"packets"`
	TotalBytes   int64     `json:"bytes"`
	NumUlPackets int64     `json:"ulPackets"`
	NumDlPackets int64     `json:"dlPackets"`
	TotalUlBytes int64     `json:"ulBytes"`
	TotalDlBytes int64     `json:"dlBytes"`
	FirstPacket  time.Time `json:"firstPacket"`
	LastPacket   time.Time `json:"lastPacket"`
}

type UpStatsReport struct {
	UpStats
	Bitrate    float64 `json:"bitrate"`
	PacketRate float64 `json:"packetRate"`
}

func NewUpStats(teid uint32, sessionId int32) *UpStats {
	return &UpStats{
		Teid:      teid,
		PduSessId: sessionId,
	}
}

func (stats *UpStats) NewPacket(ul bool, size int64, timestamp time.Time) {
	if stats.NumOfPackets == 0 {
		stats.FirstPacket = timestamp
	}
	stats.NumOfPackets++
	stats.TotalBytes += size
	stats.LastPacket = timestamp
	if ul {
		stats.NumUlPackets++
		stats.TotalUlBytes += size
	} else {
		stats.NumDlPackets++
		stats.TotalDlBytes += size
	}
}

// GenerateReport averages over the window between the first and the last
// packet. A single packet yields zero rates.
func (stats *UpStats) GenerateReport() *UpStatsReport {
	report := &UpStatsReport{UpStats: *stats}
	window := stats.LastPacket.Sub(stats.FirstPacket).Seconds()
	if window > 0 {
		report.Bitrate = float64(stats.TotalBytes*8) / window
		report.PacketRate = float64(stats.NumOfPackets) / window
	}
	return report
}

func (stats *UpStatsReport) Dumps() string {
	return fmt.Sprintf("TEID:        0x%08x,\nSessionId:   %d,\nPackets:     %d,\nBytes:       %d,\nBitrate:     %.2f bps,\nPacket Rate: %.2f pps,\n",
		stats.Teid, stats.PduSessId, stats.NumOfPackets, stats.TotalBytes, stats.Bitrate, stats.PacketRate)
}
