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

package logger

import (
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
)

var (
	log       *logrus.Logger
	AppLog    *logrus.Entry
	CfgLog    *logrus.Entry
	OamLog    *logrus.Entry
	SbiLog    *logrus.Entry
	SimLog    *logrus.Entry
	RanLog    *logrus.Entry
	AmfLog    *logrus.Entry
	AusfLog   *logrus.Entry
	UdmLog    *logrus.Entry
	SmfLog    *logrus.Entry
	UpfLog    *logrus.Entry
	UtilLog   *logrus.Entry
	MetricLog *logrus.Entry
)

func init() {
	log = logrus.New()
	log.SetReportCaller(false)

	log.Formatter = &formatter.Formatter{
		TimestampFormat: time.RFC3339,
		TrimMessages:    true,
		NoFieldsSpace:   true,
		HideKeys:        true,
		FieldsOrder:     []string{"component", "category"},
	}

	AppLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "App"})
	CfgLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "CFG"})
	OamLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "OAM"})
	SbiLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "SBI"})
	SimLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "Sim"})
	RanLog = log.WithFields(logrus.Fields{"component": "RAN", "category": "RRC"})
	AmfLog = log.WithFields(logrus.Fields{"component": "AMF", "category": "Gmm"})
	AusfLog = log.WithFields(logrus.Fields{"component": "AUSF", "category": "UeAuth"})
	UdmLog = log.WithFields(logrus.Fields{"component": "UDM", "category": "SDM"})
	SmfLog = log.WithFields(logrus.Fields{"component": "SMF", "category": "Gsm"})
	UpfLog = log.WithFields(logrus.Fields{"component": "UPF", "category": "GTPU"})
	UtilLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "Util"})
	MetricLog = log.WithFields(logrus.Fields{"component": "SIM", "category": "Metrics"})
}

func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

func SetReportCaller(enable bool) {
	log.SetReportCaller(enable)
}

// ParseAndSetLogLevel accepts logrus level names ("debug", "info", ...).
// An empty string leaves the current level untouched.
func ParseAndSetLogLevel(level string) error {
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	SetLogLevel(lvl)
	return nil
}
