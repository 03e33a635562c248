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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
)

func (app *AttachSimulatorApp) handleInitSimulation(w http.ResponseWriter, r *http.Request) {
	var config *NetworkConfig

	if r.Body != nil && r.ContentLength != 0 {
		config = &NetworkConfig{}
		if err := json.NewDecoder(r.Body).Decode(config); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else if app.config.NetConfig != nil {
		config = app.config.NetConfig
	} else {
		http.Error(w, "Missing request body", http.StatusBadRequest)
		return
	}

	if err := app.InitNewSimulation(config); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	app.writeStatus(w)
}

func (app *AttachSimulatorApp) handleStartSimulation(w http.ResponseWriter, r *http.Request) {
	if err := app.StartSimulation(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	app.writeStatus(w)
}

func (app *AttachSimulatorApp) handleStatusSimulation(w http.ResponseWriter, r *http.Request) {
	app.writeStatus(w)
}

func (app *AttachSimulatorApp) handleStopSimulation(w http.ResponseWriter, r *http.Request) {
	if err := app.StopSimulation(); err != nil {
		http.Error(w, "could not stop simulation: "+err.Error(), http.StatusInternalServerError)
		return
	}
	app.writeStatus(w)
}

func (app *AttachSimulatorApp) handleReportSimulation(w http.ResponseWriter, r *http.Request) {
	reports, err := app.Reports()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

func (app *AttachSimulatorApp) writeStatus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(app.GetCurrentSimulationStatus()); err != nil {
		http.Error(w, "could not encode response", http.StatusInternalServerError)
	}
}

// Router returns the OAM API router.
func (app *AttachSimulatorApp) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/attach-simulator/v1").Subrouter()
	api.HandleFunc("/configure", app.handleInitSimulation).Methods(http.MethodPost)
	api.HandleFunc("/start", app.handleStartSimulation).Methods(http.MethodPost)
	api.HandleFunc("/status", app.handleStatusSimulation).Methods(http.MethodGet)
	api.HandleFunc("/stop", app.handleStopSimulation).Methods(http.MethodPost)
	api.HandleFunc("/report", app.handleReportSimulation).Methods(http.MethodGet)
	return router
}

func (app *AttachSimulatorApp) startHttpServer() {
	app.wg.Add(1)

	app.server = &http.Server{Addr: fmt.Sprintf(":%d", app.config.OamPort), Handler: app.Router()}

	go func() {
		defer func() {
			_ = recover()
			app.wg.Done()
		}()

		logger.OamLog.Infof("serving simulation api on :%d", app.config.OamPort)
		// always returns error. ErrServerClosed on graceful close
		if err := app.server.ListenAndServe(); err != http.ErrServerClosed {
			// unexpected error. port in use?
			logger.OamLog.Fatalf("ListenAndServe(): %v", err)
		}
	}()
}

func (app *AttachSimulatorApp) stopHttpServer() {
	if app.server != nil {
		if err := app.server.Close(); err != nil {
			logger.OamLog.Warnf("could not stop oam server: %v", err)
		}
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Close(); err != nil {
			logger.MetricLog.Warnf("could not stop metrics server: %v", err)
		}
	}
}
