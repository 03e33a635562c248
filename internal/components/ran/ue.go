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
	"sync"
	"time"

	"github.com/giuliocarot0/gitc"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/monitoring"
)

// Registrar accepts registration requests on behalf of the core.
type Registrar interface {
	ReceiveRegistrationRequest(supi string) bool
}

// SessionEstablisher answers PDU session establishment requests. Both the
// gNB (direct) and the AMF (core-mediated) implement it.
type SessionEstablisher interface {
	ProcessPduSessionEstablishment(ue models.UeView) (models.PduSessionOutcome, error)
}

// A Ue represents a User Equipment attaching to the network.
// Its identity is fixed; everything else is a guarded state machine.
type Ue struct {
	// identifiers
	Imsi           string
	SupportedPlmns models.PlmnList

	// status variables
	rrcState       models.RrcState
	rmState        models.RmState
	selectedCell   *Cell
	sessionOutcome models.PduSessionOutcome
	statusMutex    sync.RWMutex

	// simulation variables
	simId   string
	amfTask string
}

type UeConfig struct {
	Supi           string          `yaml:"supi" json:"supi" valid:"required"`
	SupportedPlmns []models.PlmnId `yaml:"supportedPlmns" json:"supportedPlmns"`
}

// NewUserEquipment creates a detached, deregistered UE.
func NewUserEquipment(cfg UeConfig, simulationId string) *Ue {
	return &Ue{
		Imsi:           cfg.Supi,
		SupportedPlmns: models.PlmnList(cfg.SupportedPlmns),
		rrcState:       models.RrcStateIdle,
		rmState:        models.RmStateDeregistered,
		simId:          simulationId,
	}
}

// PowerUp accounts the UE as deregistered. State changes are reported to
// amfTask over gitc; an empty amfTask disables reporting.
func (ue *Ue) PowerUp(amfTask string) {
	monitoring.UEsTotal.WithLabelValues(ue.simId, string(models.RmStateDeregistered)).Inc()

	ue.statusMutex.Lock()
	ue.amfTask = amfTask
	ue.statusMutex.Unlock()
}

func (ue *Ue) Supi() string {
	return ue.Imsi
}

func (ue *Ue) RrcState() models.RrcState {
	ue.statusMutex.RLock()
	defer ue.statusMutex.RUnlock()
	return ue.rrcState
}

func (ue *Ue) RmState() models.RmState {
	ue.statusMutex.RLock()
	defer ue.statusMutex.RUnlock()
	return ue.rmState
}

func (ue *Ue) SelectedCell() *Cell {
	ue.statusMutex.RLock()
	defer ue.statusMutex.RUnlock()
	return ue.selectedCell
}

func (ue *Ue) SessionOutcome() models.PduSessionOutcome {
	ue.statusMutex.RLock()
	defer ue.statusMutex.RUnlock()
	return ue.sessionOutcome
}

// Phase derives the attach phase from the UE's own fields.
func (ue *Ue) Phase() models.UeState {
	ue.statusMutex.RLock()
	defer ue.statusMutex.RUnlock()

	switch {
	case ue.sessionOutcome == models.PduSessionEstablished:
		return models.PduSessionActive
	case ue.rmState == models.RmStateRegistered:
		return models.Registered
	case ue.rrcState == models.RrcStateConnected:
		return models.RrcConnected
	case ue.selectedCell != nil:
		return models.CellSelected
	default:
		return models.Detached
	}
}

// SearchCells lists the cells a gNB makes discoverable, in order.
func (ue *Ue) SearchCells(gnb *Gnb) []*Cell {
	cells := gnb.Cells()
	logger.RanLog.Debugf("[%s] discovered %d cells on %s", ue.Imsi, len(cells), gnb.GnbId)
	return cells
}

// SelectCell keeps the candidates broadcasting a supported PLMN and picks
// the strongest one. Ties go to the first maximal candidate. It returns nil
// when nothing matches, leaving the current selection untouched.
func (ue *Ue) SelectCell(candidates []*Cell) *Cell {
	var best *Cell
	for _, cell := range candidates {
		mib, _ := cell.BroadcastSystemInfo()
		if !ue.SupportedPlmns.Contains(mib.PlmnId) {
			continue
		}
		if best == nil || cell.SignalStrength > best.SignalStrength {
			best = cell
		}
	}

	if best == nil {
		logger.RanLog.Warnf("[%s] cell selection failed: no cell broadcasts a supported PLMN", ue.Imsi)
		monitoring.CellSelections.WithLabelValues(ue.simId, monitoring.ResultFailure).Inc()
		return nil
	}

	ue.statusMutex.Lock()
	ue.selectedCell = best
	ue.statusMutex.Unlock()

	logger.RanLog.Infof("[%s] selected cell %d (plmn=%s, signal=%d)", ue.Imsi, best.Id, best.PlmnId, best.SignalStrength)
	monitoring.CellSelections.WithLabelValues(ue.simId, monitoring.ResultSuccess).Inc()
	return best
}

// SendRrcConnectionRequest builds the request for the selected cell.
// A request may be resent while the previous one is pending.
func (ue *Ue) SendRrcConnectionRequest() (models.RrcConnectionRequest, error) {
	ue.statusMutex.Lock()
	defer ue.statusMutex.Unlock()

	if ue.selectedCell == nil {
		return models.RrcConnectionRequest{}, models.ErrNoCellSelected
	}
	if ue.rrcState == models.RrcStateConnected {
		return models.RrcConnectionRequest{}, models.NewStateTransitionError(models.RrcSetup, string(ue.rrcState), "already connected")
	}

	req := models.RrcConnectionRequest{
		PlmnId:         ue.selectedCell.PlmnId,
		CellId:         ue.selectedCell.Id,
		SignalStrength: ue.selectedCell.SignalStrength,
		Frequency:      ue.selectedCell.Frequency,
	}
	ue.rrcState = models.RrcStateRequestSent
	logger.RanLog.Infof("[%s] RRC connection request sent on cell %d", ue.Imsi, req.CellId)
	return req, nil
}

// CompleteRrcConnectionSetup moves a pending request to RRC_CONNECTED.
func (ue *Ue) CompleteRrcConnectionSetup() (models.RrcState, error) {
	ue.statusMutex.Lock()
	if ue.rrcState != models.RrcStateRequestSent {
		state := ue.rrcState
		ue.statusMutex.Unlock()
		return state, models.NewStateTransitionError(models.RrcSetup, string(state), "no RRC connection request pending")
	}
	ue.rrcState = models.RrcStateConnected
	ue.statusMutex.Unlock()

	logger.RanLog.Infof("[%s] RRC connected", ue.Imsi)
	ue.report(models.AmfEventConnectivityState)
	return models.RrcStateConnected, nil
}

// Register asks the core to register the UE. On success the radio link is
// re-asserted as connected and the UE becomes RM-REGISTERED; on failure no
// state changes.
func (ue *Ue) Register(amf Registrar) bool {
	if !amf.ReceiveRegistrationRequest(ue.Imsi) {
		logger.RanLog.Warnf("[%s] registration rejected", ue.Imsi)
		return false
	}

	ue.statusMutex.Lock()
	wasRegistered := ue.rmState == models.RmStateRegistered
	ue.rrcState = models.RrcStateConnected
	ue.rmState = models.RmStateRegistered
	ue.statusMutex.Unlock()

	logger.RanLog.Infof("[%s] successfully registered to the network", ue.Imsi)
	ue.report(models.AmfEventRegistrationState)
	ue.report(models.AmfEventLocationReport)

	if !wasRegistered {
		monitoring.UEsTotal.WithLabelValues(ue.simId, string(models.RmStateRegistered)).Inc()
		monitoring.UEsTotal.WithLabelValues(ue.simId, string(models.RmStateDeregistered)).Dec()
	}
	return true
}

// RequestPduSession asks either the gNB or the AMF for a PDU session and
// records the outcome.
func (ue *Ue) RequestPduSession(establisher SessionEstablisher) (models.PduSessionOutcome, error) {
	outcome, err := establisher.ProcessPduSessionEstablishment(ue)

	ue.statusMutex.Lock()
	ue.sessionOutcome = outcome
	ue.statusMutex.Unlock()

	if err != nil {
		logger.RanLog.Warnf("[%s] PDU session establishment failed: %v", ue.Imsi, err)
		return outcome, err
	}
	logger.RanLog.Infof("[%s] PDU session outcome: %s", ue.Imsi, outcome)
	return outcome, nil
}

func (ue *Ue) report(event models.AmfEventType) {
	ue.statusMutex.RLock()
	if ue.amfTask == "" {
		ue.statusMutex.RUnlock()
		return
	}
	msg := &models.UeToAmfMsg{
		EventType: event,
		TimeStamp: time.Now(),
		RmState:   ue.rmState,
		RrcState:  ue.rrcState,
		Supi:      ue.Imsi,
	}
	if ue.selectedCell != nil {
		msg.PlmnId = ue.selectedCell.PlmnId
		msg.CellId = ue.selectedCell.Id
	}
	to := ue.amfTask
	ue.statusMutex.RUnlock()

	if err := gitc.Send(ue.Imsi, to, models.UeToAmfType, msg); err != nil {
		logger.RanLog.Errorf("[%s] error sending UeToAmfMsg: %v", ue.Imsi, err)
	}
}
