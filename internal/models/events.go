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

type AmfEventType string

const (
	AmfEventRegistrationState AmfEventType = "REGISTRATION_STATE_REPORT"
	AmfEventConnectivityState AmfEventType = "CONNECTIVITY_STATE_REPORT"
	AmfEventLocationReport    AmfEventType = "LOCATION_REPORT"
)

type AmfEvent struct {
	Type AmfEventType `json:"type"`
}

type AmfEventSubscription struct {
	EventList      []AmfEvent `json:"eventList"`
	EventNotifyUri string     `json:"eventNotifyUri"`
}

type AmfCreateEventSubscription struct {
	Subscription *AmfEventSubscription `json:"subscription"`
}

type AmfEventReport struct {
	Type      AmfEventType `json:"type"`
	TimeStamp time.Time    `json:"timeStamp"`
	Supi      string       `json:"supi"`
	RmState   RmState      `json:"rmState,omitempty"`
	RrcState  RrcState     `json:"rrcState,omitempty"`
	PlmnId    PlmnId       `json:"plmnId,omitempty"`
	CellId    int          `json:"cellId,omitempty"`
}

type AmfEventNotification struct {
	SubscriptionId string           `json:"subscriptionId,omitempty"`
	ReportList     []AmfEventReport `json:"reportList"`
}

type SmfEventType string

const (
	SmfEventPduSessionEstablishment SmfEventType = "PDU_SES_EST"
	SmfEventPduSessionRelease       SmfEventType = "PDU_SES_REL"
)

type SmfEventSubscription struct {
	Event SmfEventType `json:"event"`
}

type NsmfEventExposure struct {
	NotifUri  string                 `json:"notifUri"`
	EventSubs []SmfEventSubscription `json:"eventSubs"`
}

type EventNotification struct {
	Event     SmfEventType `json:"event"`
	TimeStamp time.Time    `json:"timeStamp"`
	Supi      string       `json:"supi"`
	Dnn       string       `json:"dnn,omitempty"`
	Snssai    *Snssai      `json:"snssai,omitempty"`
	PduSeId   int32        `json:"pduSeId"`
	Ipv4Addr  string       `json:"ipv4Addr,omitempty"`
	Tunnel    string       `json:"tunnel,omitempty"`
}

type NsmfEventExposureNotification struct {
	NotifId     string              `json:"notifId"`
	EventNotifs []EventNotification `json:"eventNotifs"`
}
