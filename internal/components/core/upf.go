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
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wmnsk/go-gtp/gtpv1/message"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

var ErrNoTunnel = errors.New("no tunnel established")

// gtpuHeaderLen is the mandatory part of the GTPv1-U header.
const gtpuHeaderLen = 8

// Tunnel is a GTP-U tunnel between an anchor UPF and its peer.
type Tunnel struct {
	AnchorId string
	PeerId   string
	Teid     uint32
}

func (t Tunnel) String() string {
	return fmt.Sprintf("gtpu:%s<->%s/teid=0x%08x", t.AnchorId, t.PeerId, t.Teid)
}

// A Upf terminates at most one tunnel. The SMF creates a fresh anchor/client
// pair for every session request.
type Upf struct {
	UpfId string

	tunnel      *Tunnel
	stats       *models.UpStats
	tunnelMutex sync.RWMutex
}

func NewUpf(role string) *Upf {
	return &Upf{UpfId: fmt.Sprintf("UPF-%s-%s", role, uuid.NewString()[:8])}
}

// EstablishTunnel binds this UPF and peer with the given TEID.
func (upf *Upf) EstablishTunnel(peer *Upf, teid uint32, sessionId int32) (Tunnel, error) {
	if peer == upf {
		return Tunnel{}, fmt.Errorf("[%s] cannot tunnel to itself", upf.UpfId)
	}
	upf.tunnelMutex.Lock()
	defer upf.tunnelMutex.Unlock()
	peer.tunnelMutex.Lock()
	defer peer.tunnelMutex.Unlock()

	if upf.tunnel != nil || peer.tunnel != nil {
		return Tunnel{}, models.ErrTunnelExists
	}

	t := Tunnel{AnchorId: upf.UpfId, PeerId: peer.UpfId, Teid: teid}
	upf.tunnel = &t
	peer.tunnel = &t
	upf.stats = models.NewUpStats(teid, sessionId)
	peer.stats = models.NewUpStats(teid, sessionId)

	logger.UpfLog.Infof("[%s] tunnel established: %s", upf.UpfId, t)
	return t, nil
}

// ReportTunnel returns the descriptor of the established tunnel.
func (upf *Upf) ReportTunnel() (string, error) {
	upf.tunnelMutex.RLock()
	defer upf.tunnelMutex.RUnlock()
	if upf.tunnel == nil {
		return "", ErrNoTunnel
	}
	return upf.tunnel.String(), nil
}

func (upf *Upf) Tunnel() (Tunnel, bool) {
	upf.tunnelMutex.RLock()
	defer upf.tunnelMutex.RUnlock()
	if upf.tunnel == nil {
		return Tunnel{}, false
	}
	return *upf.tunnel, true
}

// Encapsulate wraps payload in a GTP-U T-PDU carrying the tunnel TEID.
func (upf *Upf) Encapsulate(payload []byte) ([]byte, error) {
	t, ok := upf.Tunnel()
	if !ok {
		return nil, ErrNoTunnel
	}
	return message.NewTPDU(t.Teid, payload).Marshal()
}

// Receive decapsulates a T-PDU, checks its TEID against the tunnel and
// accounts the inner payload.
func (upf *Upf) Receive(b []byte, ul bool, ts time.Time) (int, error) {
	if len(b) < gtpuHeaderLen {
		return 0, fmt.Errorf("[%s] truncated GTP-U packet: %d bytes", upf.UpfId, len(b))
	}
	if declared := int(binary.BigEndian.Uint16(b[2:4])); gtpuHeaderLen+declared > len(b) {
		return 0, fmt.Errorf("[%s] truncated GTP-U packet: header declares %d bytes, got %d", upf.UpfId, declared, len(b)-gtpuHeaderLen)
	}
	msg, err := message.Parse(b)
	if err != nil {
		return 0, fmt.Errorf("[%s] malformed GTP-U packet: %w", upf.UpfId, err)
	}
	tpdu, ok := msg.(*message.TPDU)
	if !ok || msg.MessageType() != message.MsgTypeTPDU {
		return 0, fmt.Errorf("[%s] unexpected GTP-U message type %d", upf.UpfId, msg.MessageType())
	}

	upf.tunnelMutex.Lock()
	defer upf.tunnelMutex.Unlock()
	if upf.tunnel == nil {
		return 0, ErrNoTunnel
	}
	if msg.TEID() != upf.tunnel.Teid {
		return 0, fmt.Errorf("[%s] teid mismatch: got 0x%08x, want 0x%08x", upf.UpfId, msg.TEID(), upf.tunnel.Teid)
	}

	size := len(tpdu.Payload)
	upf.stats.NewPacket(ul, int64(size), ts)
	return size, nil
}

func (upf *Upf) Stats() *models.UpStatsReport {
	upf.tunnelMutex.RLock()
	defer upf.tunnelMutex.RUnlock()
	if upf.stats == nil {
		return nil
	}
	return upf.stats.GenerateReport()
}
