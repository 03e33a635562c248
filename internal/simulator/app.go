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
	"os"
	"os/signal"
	"sync"
	"syscall"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/monitoring"
)

/* Simulation Controller code */

type SimulationStatus string

const (
	CONFIGURED SimulationStatus = "CONFIGURED"
	STARTED    SimulationStatus = "STARTED"
	STOPPED    SimulationStatus = "STOPPED"
	ERROR      SimulationStatus = "ERROR"
)

type SimulationStatusResponse struct {
	Status       SimulationStatus `json:"status"`
	SimulationId string           `json:"simulationId,omitempty"`
}

type AttachSimulatorApp struct {
	currentInstance *NetworkInstance
	status          SimulationStatus
	instanceMutex   sync.RWMutex
	server          *http.Server
	metricsServer   *http.Server
	wg              sync.WaitGroup
	ctx             context.Context
	config          *AppConfig
}

func NewAttachSimulatorApp(config *AppConfig) *AttachSimulatorApp {
	return &AttachSimulatorApp{
		status: STOPPED,
		config: config,
	}
}

// InitNewSimulation replaces any idle instance with one built from config.
func (app *AttachSimulatorApp) InitNewSimulation(config *NetworkConfig) error {
	if config == nil {
		return errors.New("no configuration provided, could not initialize")
	}
	config.SetDefaults()
	if _, err := config.Validate(); err != nil {
		return fmt.Errorf("invalid simulation profile: %w", err)
	}

	app.instanceMutex.Lock()
	defer app.instanceMutex.Unlock()

	if app.status == STARTED {
		return errors.New("could not initialize the simulation instance, please stop the current instance")
	}
	if app.currentInstance != nil {
		app.currentInstance.Close()
		app.currentInstance = nil
	}

	instance := NewNetworkInstance(app.config.SbiPort, config)
	if err := instance.InitNetworkInstance(); err != nil {
		instance.Close()
		app.status = ERROR
		return fmt.Errorf("could not initialize the simulation instance: %w", err)
	}

	app.currentInstance = instance
	app.status = CONFIGURED
	return nil
}

func (app *AttachSimulatorApp) StartSimulation() error {
	app.instanceMutex.Lock()
	defer app.instanceMutex.Unlock()

	if app.currentInstance == nil {
		return errors.New("please configure the simulation via /configure")
	}
	switch app.status {
	case STARTED:
		return errors.New("simulation already started")
	case STOPPED, ERROR:
		return errors.New("please configure a new simulation via /configure")
	}

	if err := app.currentInstance.Start(); err != nil {
		app.status = ERROR
		return fmt.Errorf("could not start the simulation instance: %w", err)
	}

	app.status = STARTED
	return nil
}

func (app *AttachSimulatorApp) GetCurrentSimulationStatus() SimulationStatusResponse {
	app.instanceMutex.RLock()
	defer app.instanceMutex.RUnlock()

	resp := SimulationStatusResponse{Status: app.status}
	if app.currentInstance != nil {
		resp.SimulationId = app.currentInstance.SimulationId()
	}
	return resp
}

func (app *AttachSimulatorApp) StopSimulation() error {
	app.instanceMutex.Lock()
	defer app.instanceMutex.Unlock()

	if app.status != STARTED || app.currentInstance == nil {
		return errors.New("no running instance")
	}
	if err := app.currentInstance.Stop(); err != nil {
		return fmt.Errorf("could not stop the simulation instance: %w", err)
	}

	// keep the instance so its reports stay readable
	app.status = STOPPED
	return nil
}

func (app *AttachSimulatorApp) Reports() ([]AttachReport, error) {
	app.instanceMutex.RLock()
	defer app.instanceMutex.RUnlock()

	if app.currentInstance == nil {
		return nil, errors.New("no simulation instance")
	}
	return app.currentInstance.Reports(), nil
}

func (app *AttachSimulatorApp) Run() {
	var cancel context.CancelFunc
	app.ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	app.wg.Add(1)
	go app.listenShutdownEvent()
	logger.AppLog.Infof("running config: \n%s", app.config.Dumps())

	if app.config.InitOnStartup {
		logger.AppLog.Infof("bootstraping simulation instance")
		if err := app.InitNewSimulation(app.config.NetConfig); err != nil {
			logger.AppLog.Fatalf("could not initialize the simulator on startup: %v", err)
		}
	}

	app.startHttpServer()
	app.metricsServer = monitoring.StartMetricsServer(app.config.MetricsPort)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.AppLog.Infof("terminating...")

	cancel()
	app.wg.Wait()
}

func (app *AttachSimulatorApp) listenShutdownEvent() {
	defer func() {
		_ = recover()
		app.wg.Done()
	}()

	<-app.ctx.Done()

	app.instanceMutex.Lock()
	if app.currentInstance != nil {
		if app.status == STARTED {
			_ = app.currentInstance.Stop()
		}
		app.currentInstance.Close()
	}
	app.instanceMutex.Unlock()

	app.stopHttpServer()
}
