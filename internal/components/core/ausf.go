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
	"fmt"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

// SubscriberAuthenticator answers whether an identity is a known subscriber.
type SubscriberAuthenticator interface {
	Authenticate(supi string) bool
}

type Ausf struct {
	AusfId string
}

func NewAusf(plmnId models.PlmnId) *Ausf {
	return &Ausf{AusfId: fmt.Sprintf("AUSF-%s%s", plmnId.Mcc(), plmnId.Mnc())}
}

// Authenticate delegates the credential check to the subscriber store.
func (ausf *Ausf) Authenticate(supi string, store SubscriberAuthenticator) models.AuthResult {
	ok := store.Authenticate(supi)
	if ok {
		logger.AusfLog.Infof("[%s] %s authenticated (%s)", ausf.AusfId, supi, models.AuthAlgorithm5gAka)
	} else {
		logger.AusfLog.Warnf("[%s] %s failed authentication", ausf.AusfId, supi)
	}
	return models.AuthResult{
		Authenticated: ok,
		Algorithm:     models.AuthAlgorithm5gAka,
	}
}
