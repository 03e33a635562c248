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
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohae/deepcopy"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

// Udm is the in-memory subscriber store. Membership in the subscriber table
// is the only authentication predicate.
type Udm struct {
	UdmId string

	subscribers   map[string]models.SubscriptionData
	registrations []models.RegistrationRecord
	dataMutex     sync.RWMutex
}

func NewUdm(plmnId models.PlmnId) *Udm {
	return &Udm{
		UdmId:       fmt.Sprintf("UDM-%s%s", plmnId.Mcc(), plmnId.Mnc()),
		subscribers: make(map[string]models.SubscriptionData),
	}
}

// Provision adds or replaces a subscriber record.
func (udm *Udm) Provision(data models.SubscriptionData) error {
	if data.Supi == "" {
		return errors.New("subscriber without supi")
	}
	udm.dataMutex.Lock()
	defer udm.dataMutex.Unlock()
	udm.subscribers[data.Supi] = data
	logger.UdmLog.Debugf("[%s] provisioned %s", udm.UdmId, data.Supi)
	return nil
}

func (udm *Udm) Authenticate(supi string) bool {
	udm.dataMutex.RLock()
	defer udm.dataMutex.RUnlock()
	_, ok := udm.subscribers[supi]
	return ok
}

// RegisterUe appends a registration record for a known subscriber.
func (udm *Udm) RegisterUe(supi string) error {
	udm.dataMutex.Lock()
	defer udm.dataMutex.Unlock()
	if _, ok := udm.subscribers[supi]; !ok {
		return fmt.Errorf("%w: %s", models.ErrUnknownSubscriber, supi)
	}
	udm.registrations = append(udm.registrations, models.RegistrationRecord{
		Supi:         supi,
		RegisteredAt: time.Now(),
	})
	logger.UdmLog.Infof("[%s] %s registered", udm.UdmId, supi)
	return nil
}

// GetSubscriptionData returns a copy callers may modify freely.
func (udm *Udm) GetSubscriptionData(supi string) (models.SubscriptionData, error) {
	udm.dataMutex.RLock()
	defer udm.dataMutex.RUnlock()
	data, ok := udm.subscribers[supi]
	if !ok {
		return models.SubscriptionData{}, fmt.Errorf("%w: %s", models.ErrUnknownSubscriber, supi)
	}
	return deepcopy.Copy(data).(models.SubscriptionData), nil
}

func (udm *Udm) Registrations() []models.RegistrationRecord {
	udm.dataMutex.RLock()
	defer udm.dataMutex.RUnlock()
	return deepcopy.Copy(udm.registrations).([]models.RegistrationRecord)
}

// NORTHBOUND Definitions

func (udm *Udm) HandleGetSmData(w http.ResponseWriter, r *http.Request) {
	supi := mux.Vars(r)["supi"]

	data, err := udm.GetSubscriptionData(supi)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

func (udm *Udm) RegisterNorthboundAPIs(r *mux.Router) {
	r.HandleFunc("/nudm-sdm/v2/{supi}/sm-data", udm.HandleGetSmData).Methods(http.MethodGet)
	logger.UdmLog.Infof("[%s] nudm-sdm has been registered", udm.UdmId)
}
