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

type RrcState string

const (
	RrcStateIdle        RrcState = "RRC_IDLE"
	RrcStateRequestSent RrcState = "RRC_CONNECTION_REQUEST_SENT"
	RrcStateConnected   RrcState = "RRC_CONNECTED"
)

type RmState string

const (
	RmStateDeregistered RmState = "RM-DEREGISTERED"
	RmStateRegistered   RmState = "RM-REGISTERED"
)

type GnbState string

const (
	GnbStateIdle      GnbState = "IDLE"
	GnbStateSetupSent GnbState = "RRC_SETUP_SENT"
)

type PduSessionOutcome string

const (
	PduSessionNone        PduSessionOutcome = ""
	PduSessionEstablished PduSessionOutcome = "PDU_SESSION_ESTABLISHED"
	PduSessionFailed      PduSessionOutcome = "PDU_SESSION_ESTABLISHMENT_FAILED"
)

// UeState is the attach phase of a terminal, derived from its RRC, RM and
// session state. Phases only move forward within one attach run.
type UeState int

const (
	Detached         UeState = iota
	CellSelected             // camped, RRC idle or request pending
	RrcConnected             // radio link up, not registered
	Registered               // registered, no PDU session
	PduSessionActive         // PDU session established
)

func (s UeState) String() string {
	switch s {
	case Detached:
		return "DETACHED"
	case CellSelected:
		return "CELL_SELECTED"
	case RrcConnected:
		return "RRC_CONNECTED"
	case Registered:
		return "REGISTERED"
	case PduSessionActive:
		return "PDU_SESSION_ACTIVE"
	}
	return "UNKNOWN"
}

type UeProcedure string

const (
	NoProcedure             UeProcedure = "NONE"
	CellSelection           UeProcedure = "CELL_SELECTION"
	RrcSetup                UeProcedure = "RRC_SETUP"
	Registration            UeProcedure = "REGISTRATION"
	PduSessionEstablishment UeProcedure = "PDU_SES_EST"
)

type Transition struct {
	To        UeState
	Procedure UeProcedure
}

// SessionVariant selects which network element answers a PDU session request.
type SessionVariant string

const (
	SessionVariantCore   SessionVariant = "core"
	SessionVariantDirect SessionVariant = "direct"
)
