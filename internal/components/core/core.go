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
	"errors"

	"github.com/gorilla/mux"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

// Core is the composition root of the network functions: it owns one AMF,
// which owns the AUSF and UDM and, in the core-mediated variant, the SMF.
type Core struct {
	SimulationId string
	Amf          *Amf
}

// NewCore builds the core for plmnId. A non-nil ipam attaches an SMF so
// PDU sessions are established through SMF/UPF.
func NewCore(plmnId models.PlmnId, simulationId string, ipam *utils.IPAllocator) *Core {
	amf := NewAmf(plmnId)
	if ipam != nil {
		amf.SetSmf(NewSmf(plmnId, ipam))
	}
	return &Core{
		SimulationId: simulationId,
		Amf:          amf,
	}
}

// Start launches the event exposure tasks, named after the simulation so
// several simulations can coexist in one process.
func (c *Core) Start() error {
	if err := c.Amf.InitAmf("AMF-" + c.SimulationId); err != nil {
		return err
	}
	if smf := c.Amf.Smf(); smf != nil {
		if err := smf.InitSmf("SMF-" + c.SimulationId); err != nil {
			return err
		}
	}
	return nil
}

// Stop releases the event exposure tasks so their names can be reused.
func (c *Core) Stop() error {
	var errs []error
	if smf := c.Amf.Smf(); smf != nil {
		if err := smf.StopSmf(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.Amf.StopAmf(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Core) Provision(subscribers []models.SubscriptionData) error {
	for _, sub := range subscribers {
		if err := c.Amf.Udm().Provision(sub); err != nil {
			return err
		}
	}
	return nil
}

func (c *Core) RegisterNorthboundAPIs(r *mux.Router) {
	c.Amf.RegisterNorthboundAPIs(r)
	c.Amf.Udm().RegisterNorthboundAPIs(r)
	if smf := c.Amf.Smf(); smf != nil {
		smf.RegisterNorthboundAPIs(r)
	}
}
