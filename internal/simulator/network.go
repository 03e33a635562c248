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

package simulator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/core"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/ran"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/monitoring"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/trafficgen"
)

// probeStepsPerPacket bounds the virtual clock polls spent per requested
// probe packet.
const probeStepsPerPacket = 100000

// AttachReport is the outcome of one terminal's attach procedure.
type AttachReport struct {
	Supi           string                   `json:"supi"`
	Phase          string                   `json:"phase"`
	SelectedCell   int                      `json:"selectedCell,omitempty"`
	RrcState       models.RrcState          `json:"rrcState"`
	RmState        models.RmState           `json:"rmState"`
	SessionOutcome models.PduSessionOutcome `json:"pduSessionOutcome,omitempty"`
	Session        *models.PduSessionInfo   `json:"pduSession,omitempty"`
	UserPlane      *models.UpStatsReport    `json:"userPlane,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

/* Network Instance Code*/

type NetworkInstance struct {
	config  *NetworkConfig
	simId   string
	sbiPort uint16

	Gnb    *ran.Gnb
	Core   *core.Core
	UeList []*ran.Ue
	ipam   *utils.IPAllocator

	reports     []AttachReport
	reportMutex sync.RWMutex
	runCancel   context.CancelFunc
	runDone     chan struct{}
	sbiServer   *http.Server
}

// NewNetworkInstance prepares an instance for config. A zero sbiPort
// disables the SBI listener.
func NewNetworkInstance(sbiPort uint16, config *NetworkConfig) *NetworkInstance {
	return &NetworkInstance{
		config:  config,
		simId:   uuid.NewString(),
		sbiPort: sbiPort,
	}
}

func (n *NetworkInstance) SimulationId() string {
	return n.simId
}

func (n *NetworkInstance) InitNetworkInstance() error {
	source := ran.NewRandomSource(n.config.BroadcastSeed)

	n.Gnb = ran.NewGnb(n.config.Gnb.Name, source)
	for _, cellCfg := range n.config.Gnb.Cells {
		if _, err := n.Gnb.AddCell(cellCfg); err != nil {
			return err
		}
	}

	if n.config.SessionVariant == models.SessionVariantCore {
		ipam, err := utils.NewIpamService(n.config.UeSubnet)
		if err != nil {
			return fmt.Errorf("ue subnet: %w", err)
		}
		n.ipam = ipam
	}

	n.Core = core.NewCore(n.config.Plmn, n.simId, n.ipam)
	if err := n.Core.Provision(n.config.Subscribers); err != nil {
		return err
	}
	if err := n.Core.Start(); err != nil {
		return err
	}

	for _, ueCfg := range n.config.Ues {
		ue := ran.NewUserEquipment(ueCfg, n.simId)
		ue.PowerUp(n.Core.Amf.TaskId())
		n.UeList = append(n.UeList, ue)
	}

	/* enable core network service based interface */
	router := mux.NewRouter()
	n.Core.RegisterNorthboundAPIs(router)

	if n.sbiPort != 0 {
		n.sbiServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", n.sbiPort),
			Handler: h2c.NewHandler(router, &http2.Server{}),
		}
		go func() {
			logger.SbiLog.Infof("serving 3GPP sbi on :%d", n.sbiPort)
			err := n.sbiServer.ListenAndServe()
			if err != nil && err != http.ErrServerClosed {
				logger.SbiLog.Errorf("could not start 3GPP sbi server: %s", err.Error())
			}
		}()
	}

	logger.SimLog.Infof("simulation %s initialized: %d cells, %d UEs, %d subscribers, variant %s",
		n.simId, len(n.config.Gnb.Cells), len(n.UeList), len(n.config.Subscribers), n.config.SessionVariant)
	return nil
}

// Start runs the attach procedure of every UE in the background.
func (n *NetworkInstance) Start() error {
	if n.runDone != nil {
		select {
		case <-n.runDone:
		default:
			return errors.New("simulation already running")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	n.runCancel = cancel
	n.runDone = make(chan struct{})

	logger.SimLog.Infof("starting simulation %s", n.simId)
	go func() {
		defer close(n.runDone)
		n.Run(ctx)
	}()
	return nil
}

// Stop cancels a running simulation, waits for the current UE to finish and
// releases every PDU session.
func (n *NetworkInstance) Stop() error {
	if n.runCancel != nil {
		n.runCancel()
		<-n.runDone
	}
	if smf := n.Core.Amf.Smf(); smf != nil {
		for _, sess := range smf.Sessions() {
			if err := smf.Release(sess.Supi, sess.Id); err != nil {
				logger.SimLog.Warnf("could not release session %d of %s: %v", sess.Id, sess.Supi, err)
			}
		}
	}
	return nil
}

// Close shuts the SBI listener down and stops the core's gitc tasks.
func (n *NetworkInstance) Close() {
	if n.sbiServer != nil {
		if err := n.sbiServer.Close(); err != nil {
			logger.SbiLog.Warnf("could not stop sbi server: %v", err)
		}
	}
	if n.Core != nil {
		if err := n.Core.Stop(); err != nil {
			logger.SimLog.Warnf("could not stop core of simulation %s: %v", n.simId, err)
		}
	}
}

// Run attaches the UEs one after another. No UE starts before the previous
// one has finished.
func (n *NetworkInstance) Run(ctx context.Context) []AttachReport {
	n.reportMutex.Lock()
	n.reports = nil
	n.reportMutex.Unlock()

	for _, ue := range n.UeList {
		if ctx.Err() != nil {
			logger.SimLog.Infof("simulation %s cancelled", n.simId)
			break
		}
		report := n.Attach(ctx, ue)

		n.reportMutex.Lock()
		n.reports = append(n.reports, report)
		n.reportMutex.Unlock()
	}
	return n.Reports()
}

func (n *NetworkInstance) Reports() []AttachReport {
	n.reportMutex.RLock()
	defer n.reportMutex.RUnlock()
	return append([]AttachReport(nil), n.reports...)
}

// Attach walks ue through the procedure table until it reaches the last
// phase or a procedure fails.
func (n *NetworkInstance) Attach(ctx context.Context, ue *ran.Ue) AttachReport {
	report := AttachReport{Supi: ue.Supi()}

	for ctx.Err() == nil {
		expected, procedure := ran.NextProcedure(ue.Phase())
		if procedure == models.NoProcedure {
			break
		}
		err := n.runProcedure(ue, procedure, &report)
		if err == nil && ue.Phase() != expected {
			err = models.NewStateTransitionError(procedure, ue.Phase().String(), "phase did not advance")
		}
		if err != nil {
			logger.SimLog.Warnf("[%s] %s failed: %v", ue.Supi(), procedure, err)
			report.Error = err.Error()
			break
		}
	}
	if err := ctx.Err(); err != nil && report.Error == "" {
		report.Error = err.Error()
	}

	report.Phase = ue.Phase().String()
	report.RrcState = ue.RrcState()
	report.RmState = ue.RmState()
	report.SessionOutcome = ue.SessionOutcome()
	if cell := ue.SelectedCell(); cell != nil {
		report.SelectedCell = cell.Id
	}
	return report
}

func (n *NetworkInstance) runProcedure(ue *ran.Ue, procedure models.UeProcedure, report *AttachReport) error {
	switch procedure {
	case models.CellSelection:
		if ue.SelectCell(ue.SearchCells(n.Gnb)) == nil {
			return models.ErrSelectionFailure
		}

	case models.RrcSetup:
		req, err := ue.SendRrcConnectionRequest()
		if err != nil {
			return err
		}
		setup, err := n.Gnb.ProcessRrcConnectionRequest(req)
		if err != nil {
			return err
		}
		logger.SimLog.Debugf("[%s] RRC setup received: %s", ue.Supi(), setup.NetworkConfiguration)
		if _, err := n.Gnb.CompleteRrcConnectionSetup(ue); err != nil {
			return err
		}

	case models.Registration:
		if !ue.Register(n.Core.Amf) {
			return models.ErrAuthenticationFailure
		}

	case models.PduSessionEstablishment:
		var establisher ran.SessionEstablisher = n.Core.Amf
		if n.config.SessionVariant == models.SessionVariantDirect {
			establisher = n.Gnb
		}
		outcome, err := ue.RequestPduSession(establisher)
		if err != nil {
			return err
		}
		if outcome != models.PduSessionEstablished {
			return fmt.Errorf("pdu session outcome %s", outcome)
		}
		n.collectSession(ue, report)

	default:
		return fmt.Errorf("unknown procedure %s", procedure)
	}
	return nil
}

func (n *NetworkInstance) collectSession(ue *ran.Ue, report *AttachReport) {
	smf := n.Core.Amf.Smf()
	if smf == nil {
		return
	}
	sess, ok := smf.LatestSession(ue.Supi())
	if !ok {
		return
	}
	info := sess.Info
	report.Session = &info

	if n.config.ProbePackets > 0 {
		upReport, err := n.probeUserPlane(ue.Supi(), sess)
		if err != nil {
			logger.SimLog.Warnf("[%s] user plane probe failed: %v", ue.Supi(), err)
			return
		}
		report.UserPlane = upReport
	}
}

// probeUserPlane pushes generated packets through the session tunnel on a
// virtual clock: downlink from anchor to client, uplink the other way.
func (n *NetworkInstance) probeUserPlane(supi string, sess *core.SessionContext) (*models.UpStatsReport, error) {
	gen, err := trafficgen.New(trafficgen.Profile(n.config.TrafficProfile))
	if err != nil {
		return nil, err
	}
	packets := trafficgen.Collect(gen, time.Now(), time.Millisecond, n.config.ProbePackets, n.config.ProbePackets*probeStepsPerPacket)

	stats := models.NewUpStats(sess.Info.Teid, sess.Info.Id)
	for _, pkt := range packets {
		src, dst, direction := sess.Anchor, sess.Client, "DL"
		if pkt.Uplink {
			src, dst, direction = sess.Client, sess.Anchor, "UL"
		}
		frame, err := src.Encapsulate(make([]byte, pkt.SizeBytes))
		if err != nil {
			return nil, err
		}
		size, err := dst.Receive(frame, pkt.Uplink, pkt.Timestamp)
		if err != nil {
			return nil, err
		}
		stats.NewPacket(pkt.Uplink, int64(size), pkt.Timestamp)
		monitoring.TrafficPackets.WithLabelValues(n.simId, supi, direction).Inc()
		monitoring.TrafficBytes.WithLabelValues(n.simId, supi, direction).Add(float64(size))
	}

	report := stats.GenerateReport()
	logger.SimLog.Debugf("[%s] user plane probe:\n%s", supi, report.Dumps())
	return report, nil
}
