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

package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/giuliocarot0/gitc"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/monitoring"
)

// Amf handles registration and gatekeeps PDU session establishment. It
// owns its AUSF and UDM; the SMF is optional and selects the core-mediated
// session path when present.
type Amf struct {
	PlmnId        models.PlmnId
	AmfId         string
	Subscriptions map[models.AmfEventType][]string
	SubMutex      sync.RWMutex

	ausf   *Ausf
	udm    *Udm
	smf    *Smf
	taskId string
	nfLock sync.RWMutex
}

func NewAmf(plmnId models.PlmnId) *Amf {
	return &Amf{
		PlmnId:        plmnId,
		AmfId:         fmt.Sprintf("AMF-%s%s", plmnId.Mcc(), plmnId.Mnc()),
		Subscriptions: make(map[models.AmfEventType][]string),
		ausf:          NewAusf(plmnId),
		udm:           NewUdm(plmnId),
	}
}

func (amf *Amf) Udm() *Udm { return amf.udm }

func (amf *Amf) Smf() *Smf {
	amf.nfLock.RLock()
	defer amf.nfLock.RUnlock()
	return amf.smf
}

func (amf *Amf) SetSmf(smf *Smf) {
	amf.nfLock.Lock()
	defer amf.nfLock.Unlock()
	amf.smf = smf
}

// InitAmf starts the AMF event exposure task under taskId.
func (amf *Amf) InitAmf(taskId string) error {
	err := gitc.StartTask(taskId, func(msg gitc.Message) {
		switch msg.Type {
		case models.UeToAmfType:
			amf.handleUeToAmfEvent(msg.Payload.(*models.UeToAmfMsg))
		}
	}, 1024)
	if err != nil {
		return fmt.Errorf("[%s] could not start AMF task: %w", amf.AmfId, err)
	}
	amf.nfLock.Lock()
	amf.taskId = taskId
	amf.nfLock.Unlock()
	logger.AmfLog.Infof("[%s] started", amf.AmfId)
	return nil
}

// StopAmf stops the event exposure task. UE reports sent afterwards are
// dropped by gitc.
func (amf *Amf) StopAmf() error {
	amf.nfLock.Lock()
	taskId := amf.taskId
	amf.taskId = ""
	amf.nfLock.Unlock()
	if taskId == "" {
		return nil
	}
	if err := gitc.StopTask(taskId); err != nil {
		return fmt.Errorf("[%s] could not stop AMF task: %w", amf.AmfId, err)
	}
	logger.AmfLog.Infof("[%s] stopped", amf.AmfId)
	return nil
}

// TaskId is the gitc task UEs report their state changes to.
func (amf *Amf) TaskId() string {
	amf.nfLock.RLock()
	defer amf.nfLock.RUnlock()
	return amf.taskId
}

// ReceiveRegistrationRequest authenticates supi through the AUSF and, on
// success, registers it in the UDM and fetches its subscription data.
func (amf *Amf) ReceiveRegistrationRequest(supi string) bool {
	logger.AmfLog.Infof("[%s] registration request from %s", amf.AmfId, supi)

	result := amf.ausf.Authenticate(supi, amf.udm)
	if !result.Authenticated {
		logger.AmfLog.Warnf("[%s] registration rejected for %s: %v", amf.AmfId, supi, models.ErrAuthenticationFailure)
		monitoring.Registrations.WithLabelValues(amf.AmfId, monitoring.ResultFailure).Inc()
		return false
	}

	if err := amf.udm.RegisterUe(supi); err != nil {
		logger.AmfLog.Errorf("[%s] %v", amf.AmfId, err)
		monitoring.Registrations.WithLabelValues(amf.AmfId, monitoring.ResultFailure).Inc()
		return false
	}
	data, err := amf.udm.GetSubscriptionData(supi)
	if err != nil {
		logger.AmfLog.Errorf("[%s] %v", amf.AmfId, err)
		monitoring.Registrations.WithLabelValues(amf.AmfId, monitoring.ResultFailure).Inc()
		return false
	}

	logger.AmfLog.Infof("[%s] %s registered (auth=%s, dnn=%s)", amf.AmfId, supi, result.Algorithm, data.Dnn)
	monitoring.Registrations.WithLabelValues(amf.AmfId, monitoring.ResultSuccess).Inc()
	return true
}

// ProcessPduSessionEstablishment gates the request on the UE being
// registered and, when an SMF is attached, delegates to it.
func (amf *Amf) ProcessPduSessionEstablishment(ue models.UeView) (models.PduSessionOutcome, error) {
	variant := string(models.SessionVariantCore)

	if err := models.CheckPduSessionPrecondition(ue); err != nil {
		logger.AmfLog.Warnf("[%s] PDU session refused for %s: %v", amf.AmfId, ue.Supi(), err)
		monitoring.PduSessionRequests.WithLabelValues(variant, monitoring.ResultFailure).Inc()
		return models.PduSessionFailed, err
	}

	smf := amf.Smf()
	if smf == nil {
		monitoring.PduSessionRequests.WithLabelValues(variant, monitoring.ResultSuccess).Inc()
		return models.PduSessionEstablished, nil
	}

	subscription, err := amf.udm.GetSubscriptionData(ue.Supi())
	if err != nil {
		monitoring.PduSessionRequests.WithLabelValues(variant, monitoring.ResultFailure).Inc()
		return models.PduSessionFailed, err
	}
	if _, err := smf.Process(ue, subscription); err != nil {
		logger.AmfLog.Warnf("[%s] SMF could not establish a session for %s: %v", amf.AmfId, ue.Supi(), err)
		monitoring.PduSessionRequests.WithLabelValues(variant, monitoring.ResultFailure).Inc()
		return models.PduSessionFailed, err
	}

	monitoring.PduSessionRequests.WithLabelValues(variant, monitoring.ResultSuccess).Inc()
	return models.PduSessionEstablished, nil
}

func (amf *Amf) handleUeToAmfEvent(msg *models.UeToAmfMsg) {
	amf.SubMutex.RLock()
	defer amf.SubMutex.RUnlock()

	callbacks := amf.Subscriptions[msg.EventType]
	if len(callbacks) == 0 {
		return
	}

	report := models.AmfEventReport{
		Type:      msg.EventType,
		TimeStamp: msg.TimeStamp,
		Supi:      msg.Supi,
		PlmnId:    msg.PlmnId,
		CellId:    msg.CellId,
	}
	switch msg.EventType {
	case models.AmfEventConnectivityState:
		report.RrcState = msg.RrcState
	case models.AmfEventRegistrationState:
		report.RmState = msg.RmState
	case models.AmfEventLocationReport:
		// location fields only
	}

	callbackBody, err := json.Marshal(&models.AmfEventNotification{
		ReportList: []models.AmfEventReport{report},
	})
	if err != nil {
		logger.AmfLog.Errorf("[%s] error while marshalling notification: %s", amf.AmfId, err.Error())
		return
	}

	for _, callbackUrl := range callbacks {
		go notify(logger.AmfLog, callbackUrl, callbackBody)
	}
}

// NORTHBOUND Definitions

func (amf *Amf) HandleNewSubscription(w http.ResponseWriter, r *http.Request) {
	subData := &models.AmfCreateEventSubscription{}

	if err := json.NewDecoder(r.Body).Decode(subData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub := subData.Subscription
	if sub == nil {
		http.Error(w, "could not find subscription information", http.StatusBadRequest)
		return
	}
	if sub.EventNotifyUri == "" {
		http.Error(w, "could not find callbackUri information", http.StatusBadRequest)
		return
	}

	amf.SubMutex.Lock()
	for _, event := range sub.EventList {
		amf.Subscriptions[event.Type] = append(amf.Subscriptions[event.Type], sub.EventNotifyUri)
	}
	amf.SubMutex.Unlock()

	w.Header().Set("Location", r.URL.Path+"/"+uuid.NewString())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(subData); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}

	logger.AmfLog.Infof("[%s] created new subscription for: %s", amf.AmfId, sub.EventNotifyUri)
}

func (amf *Amf) RegisterNorthboundAPIs(r *mux.Router) {
	r.HandleFunc("/namf-evts/v1/subscriptions", amf.HandleNewSubscription).Methods(http.MethodPost)
	logger.AmfLog.Infof("[%s] namf-evts has been registered", amf.AmfId)
}
