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
	"sort"
	"sync"
	"time"

	"github.com/giuliocarot0/gitc"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/monitoring"
)

// SessionContext is the SMF's view of an established PDU session together
// with the UPF pair anchoring it.
type SessionContext struct {
	Info   models.PduSessionInfo
	Anchor *Upf
	Client *Upf
}

type sessionKey struct {
	supi string
	id   int32
}

type Smf struct {
	PlmnId        models.PlmnId
	SmfId         string
	Subscriptions map[models.SmfEventType][]string
	SubMutex      sync.RWMutex

	ipamInstance *utils.IPAllocator
	sessions     map[sessionKey]*SessionContext
	nextId       map[string]int32
	nextTeid     uint32
	reported     []string
	sessMutex    sync.Mutex
	taskId       string
}

func NewSmf(plmnId models.PlmnId, ipamInstance *utils.IPAllocator) *Smf {
	return &Smf{
		PlmnId:        plmnId,
		SmfId:         fmt.Sprintf("SMF-%s%s", plmnId.Mcc(), plmnId.Mnc()),
		Subscriptions: make(map[models.SmfEventType][]string),
		ipamInstance:  ipamInstance,
		sessions:      make(map[sessionKey]*SessionContext),
		nextId:        make(map[string]int32),
		nextTeid:      1,
	}
}

// InitSmf starts the SMF event exposure task under taskId.
func (smf *Smf) InitSmf(taskId string) error {
	err := gitc.StartTask(taskId, func(msg gitc.Message) {
		switch msg.Type {
		case models.SmfSessionType:
			smf.handleSessionEvent(msg.Payload.(*models.SmfSessionMsg))
		}
	}, 1024)
	if err != nil {
		return fmt.Errorf("[%s] could not start SMF task: %w", smf.SmfId, err)
	}
	smf.sessMutex.Lock()
	smf.taskId = taskId
	smf.sessMutex.Unlock()
	logger.SmfLog.Infof("[%s] started", smf.SmfId)
	return nil
}

// StopSmf stops the event exposure task; later session events are not
// published.
func (smf *Smf) StopSmf() error {
	smf.sessMutex.Lock()
	taskId := smf.taskId
	smf.taskId = ""
	smf.sessMutex.Unlock()
	if taskId == "" {
		return nil
	}
	if err := gitc.StopTask(taskId); err != nil {
		return fmt.Errorf("[%s] could not stop SMF task: %w", smf.SmfId, err)
	}
	logger.SmfLog.Infof("[%s] stopped", smf.SmfId)
	return nil
}

// Process establishes a PDU session for a registered UE: it allocates the
// UE address, creates an anchor/client UPF pair, has the anchor establish
// the tunnel and report it back, and records the session.
func (smf *Smf) Process(ue models.UeView, subscription models.SubscriptionData) (models.PduSessionInfo, error) {
	if err := models.CheckPduSessionPrecondition(ue); err != nil {
		return models.PduSessionInfo{}, err
	}
	supi := ue.Supi()

	// ids and TEIDs are never reused, even when the attempt fails
	smf.sessMutex.Lock()
	id := smf.nextId[supi] + 1
	smf.nextId[supi] = id
	teid := smf.nextTeid
	smf.nextTeid++
	smf.sessMutex.Unlock()

	ip, err := smf.ipamInstance.AllocateIP(supi, id)
	if err != nil {
		return models.PduSessionInfo{}, fmt.Errorf("[%s] address allocation for %s: %w", smf.SmfId, supi, err)
	}

	anchor := NewUpf("anchor")
	client := NewUpf("client")
	tunnel, err := anchor.EstablishTunnel(client, teid, id)
	if err != nil {
		_ = smf.ipamInstance.ReleaseIP(supi, id)
		return models.PduSessionInfo{}, err
	}
	descriptor, err := anchor.ReportTunnel()
	if err != nil {
		_ = smf.ipamInstance.ReleaseIP(supi, id)
		return models.PduSessionInfo{}, err
	}

	info := models.PduSessionInfo{
		Id:            id,
		Supi:          supi,
		Dnn:           subscription.Dnn,
		Snssai:        subscription.Snssai,
		Ipv4:          ip,
		Tunnel:        descriptor,
		Teid:          tunnel.Teid,
		EstablishedAt: time.Now(),
	}

	smf.sessMutex.Lock()
	smf.reported = append(smf.reported, descriptor)
	smf.sessions[sessionKey{supi, id}] = &SessionContext{Info: info, Anchor: anchor, Client: client}
	smf.sessMutex.Unlock()

	logger.SmfLog.Infof("[%s] PDU session %d established for %s (dnn=%s, ip=%s, %s)", smf.SmfId, id, supi, info.Dnn, ip, descriptor)
	monitoring.PduSessionsTotal.WithLabelValues(smf.SmfId).Inc()
	monitoring.TunnelsTotal.WithLabelValues(smf.SmfId).Inc()
	monitoring.UEIPInfo.WithLabelValues(smf.SmfId, supi, ip).Set(1)

	smf.publish(models.SmfEventPduSessionEstablishment, info)
	return info, nil
}

// Release tears down a session and returns its address to the pool.
func (smf *Smf) Release(supi string, id int32) error {
	key := sessionKey{supi, id}

	smf.sessMutex.Lock()
	sess, ok := smf.sessions[key]
	if !ok {
		smf.sessMutex.Unlock()
		return fmt.Errorf("[%s] invalid pduSessionId %d for %s", smf.SmfId, id, supi)
	}
	delete(smf.sessions, key)
	smf.sessMutex.Unlock()

	if err := smf.ipamInstance.ReleaseIP(supi, id); err != nil {
		return err
	}

	logger.SmfLog.Infof("[%s] released pduSessionId %d for %s", smf.SmfId, id, supi)
	monitoring.PduSessionsTotal.WithLabelValues(smf.SmfId).Dec()
	monitoring.UEIPInfo.DeleteLabelValues(smf.SmfId, supi, sess.Info.Ipv4)

	smf.publish(models.SmfEventPduSessionRelease, sess.Info)
	return nil
}

func (smf *Smf) Session(supi string, id int32) (*SessionContext, bool) {
	smf.sessMutex.Lock()
	defer smf.sessMutex.Unlock()
	sess, ok := smf.sessions[sessionKey{supi, id}]
	return sess, ok
}

// LatestSession returns the most recently established session of supi if
// it is still active.
func (smf *Smf) LatestSession(supi string) (*SessionContext, bool) {
	smf.sessMutex.Lock()
	defer smf.sessMutex.Unlock()
	sess, ok := smf.sessions[sessionKey{supi, smf.nextId[supi]}]
	return sess, ok
}

// Sessions lists active sessions ordered by supi and session id.
func (smf *Smf) Sessions() []models.PduSessionInfo {
	smf.sessMutex.Lock()
	out := make([]models.PduSessionInfo, 0, len(smf.sessions))
	for _, sess := range smf.sessions {
		out = append(out, sess.Info)
	}
	smf.sessMutex.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Supi != out[j].Supi {
			return out[i].Supi < out[j].Supi
		}
		return out[i].Id < out[j].Id
	})
	return out
}

// ReportedTunnels lists every tunnel descriptor anchors have reported.
func (smf *Smf) ReportedTunnels() []string {
	smf.sessMutex.Lock()
	defer smf.sessMutex.Unlock()
	return append([]string(nil), smf.reported...)
}

func (smf *Smf) publish(event models.SmfEventType, info models.PduSessionInfo) {
	smf.sessMutex.Lock()
	taskId := smf.taskId
	smf.sessMutex.Unlock()
	if taskId == "" {
		return
	}

	msg := &models.SmfSessionMsg{
		EventType: event,
		TimeStamp: time.Now(),
		Session:   info,
	}
	if err := gitc.Send(taskId, taskId, models.SmfSessionType, msg); err != nil {
		logger.SmfLog.Errorf("[%s] error sending SmfSessionMsg: %v", smf.SmfId, err)
	}
}

func (smf *Smf) handleSessionEvent(msg *models.SmfSessionMsg) {
	smf.SubMutex.RLock()
	defer smf.SubMutex.RUnlock()

	callbacks := smf.Subscriptions[msg.EventType]
	if len(callbacks) == 0 {
		return
	}

	snssai := msg.Session.Snssai
	notification := &models.NsmfEventExposureNotification{
		NotifId: uuid.NewString(),
		EventNotifs: []models.EventNotification{{
			Event:     msg.EventType,
			TimeStamp: msg.TimeStamp,
			Supi:      msg.Session.Supi,
			Dnn:       msg.Session.Dnn,
			Snssai:    &snssai,
			PduSeId:   msg.Session.Id,
			Ipv4Addr:  msg.Session.Ipv4,
			Tunnel:    msg.Session.Tunnel,
		}},
	}

	callbackBody, err := json.Marshal(notification)
	if err != nil {
		logger.SmfLog.Errorf("[%s] error while marshalling notification: %s", smf.SmfId, err.Error())
		return
	}

	for _, callbackUrl := range callbacks {
		go notify(logger.SmfLog, callbackUrl, callbackBody)
	}
}

// NORTHBOUND Definitions

func (smf *Smf) HandleNewSubscription(w http.ResponseWriter, r *http.Request) {
	subData := &models.NsmfEventExposure{}

	if err := json.NewDecoder(r.Body).Decode(subData); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(subData.EventSubs) == 0 {
		http.Error(w, "could not find event list", http.StatusBadRequest)
		return
	}
	if subData.NotifUri == "" {
		http.Error(w, "could not find callbackUri information", http.StatusBadRequest)
		return
	}

	smf.SubMutex.Lock()
	for _, event := range subData.EventSubs {
		smf.Subscriptions[event.Event] = append(smf.Subscriptions[event.Event], subData.NotifUri)
	}
	smf.SubMutex.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(subData); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}

	logger.SmfLog.Infof("[%s] created new subscription for: %s", smf.SmfId, subData.NotifUri)
}

// HandleListSessions lists active sessions, or only the one holding the
// address given in the ipv4 query parameter.
func (smf *Smf) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := smf.Sessions()

	if ip := r.URL.Query().Get("ipv4"); ip != "" {
		supi, id, ok := smf.ipamInstance.GetUserOk(ip)
		if !ok {
			http.Error(w, "no session holds "+ip, http.StatusNotFound)
			return
		}
		sess, ok := smf.Session(supi, id)
		if !ok {
			http.Error(w, "no session holds "+ip, http.StatusNotFound)
			return
		}
		sessions = []models.PduSessionInfo{sess.Info}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sessions); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

func (smf *Smf) RegisterNorthboundAPIs(r *mux.Router) {
	r.HandleFunc("/nsmf-event-exposure/v1/subscriptions", smf.HandleNewSubscription).Methods(http.MethodPost)
	r.HandleFunc("/nsmf-pdusession/v1/sm-contexts", smf.HandleListSessions).Methods(http.MethodGet)
	logger.SmfLog.Infof("[%s] nsmf-event-exposure has been registered", smf.SmfId)
}
