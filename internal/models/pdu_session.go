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

import "time"

// UeView is the read-only face a terminal shows to network functions that
// gate procedures on its state.
type UeView interface {
	Supi() string
	RmState() RmState
	RrcState() RrcState
}

type PduSessionInfo struct {
	Id            int32     `json:"pduSessionId"`
	Supi          string    `json:"supi"`
	Dnn           string    `json:"dnn"`
	Snssai        Snssai    `json:"snssai"`
	Ipv4          string    `json:"ueIpv4Address"`
	Tunnel        string    `json:"tunnel"`
	Teid          uint32    `json:"teid"`
	EstablishedAt time.Time `json:"establishedAt"`
}

// CheckPduSessionPrecondition is the single gate shared by every PDU session
// path: the terminal must be registered, whatever its radio state.
func CheckPduSessionPrecondition(ue UeView) error {
	if ue.RmState() != RmStateRegistered {
		return NewStateTransitionError(PduSessionEstablishment, string(ue.RmState()), "ue is not registered")
	}
	return nil
}
