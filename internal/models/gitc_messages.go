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
	"time"

	"github.com/giuliocarot0/gitc"
)

const (
	UeToAmfType gitc.MessageType = iota
	SmfSessionType
)

// UeToAmfMsg carries a terminal state change to the AMF event exposure task.
type UeToAmfMsg struct {
	EventType AmfEventType
	TimeStamp time.Time
	RmState   RmState
	RrcState  RrcState
	Supi      string
	PlmnId    PlmnId
	CellId    int
}

// SmfSessionMsg carries a PDU session lifecycle event to the SMF event
// exposure task.
type SmfSessionMsg struct {
	EventType SmfEventType
	TimeStamp time.Time
	Session   PduSessionInfo
}
