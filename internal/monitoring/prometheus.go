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

package monitoring

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
)

var (
	UEsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ue_total",
			Help: "Total number of UEs by registration state",
		},
		[]string{"simulationId", "state"},
	)

	CellSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cell_selection_total",
			Help: "Cell selection attempts by result",
		},
		[]string{"simulationId", "result"},
	)

	RrcSetups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rrc_setup_total",
			Help: "RRC connection setups processed by a gNB",
		},
		[]string{"gnbId", "cellId"},
	)

	Registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration requests handled by the AMF by result",
		},
		[]string{"amfId", "result"},
	)

	PduSessionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdu_session_requests_total",
			Help: "PDU session establishment requests by variant and result",
		},
		[]string{"variant", "result"},
	)

	PduSessionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pdu_sessions_active",
			Help: "Number of active PDU sessions",
		},
		[]string{"smfId"},
	)

	TunnelsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gtpu_tunnels_total",
			Help: "GTP-U tunnels established by anchor UPFs",
		},
		[]string{"smfId"},
	)

	TrafficBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ue_traffic_bytes_total",
			Help: "Total probe traffic bytes by direction",
		},
		[]string{"simulationId", "ueId", "direction"},
	)

	TrafficPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ue_traffic_packets_total",
			Help: "Total probe traffic packets by direction",
		},
		[]string{"simulationId", "ueId", "direction"},
	)

	UEIPInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ue_ip_info",
			Help: "UE metadata mapping IMSI to IP address",
		},
		[]string{"simulationId", "imsi", "ip"},
	)
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

func init() {
	prometheus.MustRegister(UEsTotal, CellSelections, RrcSetups, Registrations, PduSessionRequests,
		PduSessionsTotal, TunnelsTotal, TrafficBytes, TrafficPackets, UEIPInfo)
}

// StartMetricsServer serves /metrics on its own mux so it never collides with
// handlers registered on http.DefaultServeMux.
func StartMetricsServer(port uint16) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}

	logger.MetricLog.Infof("starting prometheus metrics server on :%d", port)
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.MetricLog.Fatalf("could not start metrics server: %s", err.Error())
		}
	}()
	return server
}
