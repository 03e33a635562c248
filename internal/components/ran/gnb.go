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

package ran

import (
	"fmt"
	"strconv"
	"sync"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/monitoring"
)

// A Gnb owns an ordered set of cells and mediates the RRC handshake between
// a terminal and the network.
type Gnb struct {
	GnbId string

	cells   []*Cell
	state   models.GnbState
	source  SystemInfoSource
	stateMu sync.RWMutex
}

func NewGnb(gnbId string, source SystemInfoSource) *Gnb {
	if source == nil {
		source = NewRandomSource(0)
	}
	return &Gnb{
		GnbId:  gnbId,
		state:  models.GnbStateIdle,
		source: source,
	}
}

// AddCell appends a cell built from cfg. Cell ids are unique per gNB.
func (g *Gnb) AddCell(cfg CellConfig) (*Cell, error) {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()

	for _, c := range g.cells {
		if c.Id == cfg.Id {
			return nil, fmt.Errorf("gnb %s: duplicate cell id %d", g.GnbId, cfg.Id)
		}
	}
	cell := NewCell(cfg, g.source)
	g.cells = append(g.cells, cell)
	logger.RanLog.Infof("[%s] cell %d added (plmn=%s, freq=%d, type=%s)", g.GnbId, cell.Id, cell.PlmnId, cell.Frequency, cell.CellType)
	return cell, nil
}

// Cells returns the cells in insertion order.
func (g *Gnb) Cells() []*Cell {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	out := make([]*Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

func (g *Gnb) Cell(id int) (*Cell, bool) {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	for _, c := range g.cells {
		if c.Id == id {
			return c, true
		}
	}
	return nil, false
}

func (g *Gnb) State() models.GnbState {
	g.stateMu.RLock()
	defer g.stateMu.RUnlock()
	return g.state
}

// ProcessRrcConnectionRequest answers a connection request for one of this
// gNB's cells with an RRC setup and moves the gNB to RRC_SETUP_SENT.
func (g *Gnb) ProcessRrcConnectionRequest(req models.RrcConnectionRequest) (models.RrcConnectionSetup, error) {
	if req.CellId == 0 {
		return models.RrcConnectionSetup{}, models.NewStateTransitionError(models.RrcSetup, string(g.State()), "request carries no selected cell")
	}
	if _, ok := g.Cell(req.CellId); !ok {
		return models.RrcConnectionSetup{}, models.NewStateTransitionError(models.RrcSetup, string(g.State()),
			fmt.Sprintf("cell %d is not served by %s", req.CellId, g.GnbId))
	}

	g.stateMu.Lock()
	g.state = models.GnbStateSetupSent
	g.stateMu.Unlock()

	logger.RanLog.Infof("[%s] RRC connection request on cell %d, sending setup", g.GnbId, req.CellId)
	monitoring.RrcSetups.WithLabelValues(g.GnbId, strconv.Itoa(req.CellId)).Inc()

	return models.RrcConnectionSetup{
		RrcConnectionRequest: req,
		NetworkConfiguration: models.DefaultNetworkConfiguration,
	}, nil
}

// CompleteRrcConnectionSetup delivers the setup to the terminal and returns
// the gNB to IDLE once the terminal is connected.
func (g *Gnb) CompleteRrcConnectionSetup(ue *Ue) (models.RrcState, error) {
	if g.State() != models.GnbStateSetupSent {
		return ue.RrcState(), models.NewStateTransitionError(models.RrcSetup, string(g.State()), "no RRC setup pending")
	}
	state, err := ue.CompleteRrcConnectionSetup()
	if err != nil {
		return state, err
	}

	g.stateMu.Lock()
	g.state = models.GnbStateIdle
	g.stateMu.Unlock()
	return state, nil
}

// ProcessPduSessionEstablishment is the direct session path: the gNB answers
// the request itself, without involving the core.
func (g *Gnb) ProcessPduSessionEstablishment(ue models.UeView) (models.PduSessionOutcome, error) {
	if err := models.CheckPduSessionPrecondition(ue); err != nil {
		logger.RanLog.Warnf("[%s] PDU session refused for %s: %v", g.GnbId, ue.Supi(), err)
		monitoring.PduSessionRequests.WithLabelValues(string(models.SessionVariantDirect), monitoring.ResultFailure).Inc()
		return models.PduSessionFailed, err
	}
	logger.RanLog.Infof("[%s] PDU session established for %s", g.GnbId, ue.Supi())
	monitoring.PduSessionRequests.WithLabelValues(string(models.SessionVariantDirect), monitoring.ResultSuccess).Inc()
	return models.PduSessionEstablished, nil
}
