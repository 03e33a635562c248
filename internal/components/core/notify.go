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
	"bytes"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var notifyClient = &http.Client{Timeout: 5 * time.Second}

// notify POSTs an event notification to a subscriber callback.
func notify(log *logrus.Entry, url string, data []byte) {
	resp, err := notifyClient.Post(url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Warnf("error notifying subscriber %s: %v", url, err)
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	log.Debugf("notified subscriber %s with response status: %s", url, resp.Status)
}
