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

package utils

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
)

var ErrPoolExhausted = errors.New("no available IP addresses")

// MinPrefixLen bounds the pool size: every address is enumerated up front.
const MinPrefixLen = 16

type allocationKey struct {
	supi      string
	pduSessId int32
}

// IPAllocator hands out UE addresses from one subnet, keyed by
// (supi, PDU session id). Released addresses are reused first.
type IPAllocator struct {
	mu           sync.Mutex
	availableIPs []string
	allocated    map[allocationKey]string
	ipToUser     map[string]allocationKey
}

// NewIpamService accepts an IPv4 CIDR such as "12.1.0.0/16", no wider
// than /MinPrefixLen.
func NewIpamService(cidr string) (*IPAllocator, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid ue subnet %q: %w", cidr, err)
	}
	if ipnet.IP.To4() == nil {
		return nil, fmt.Errorf("invalid ue subnet %q: not IPv4", cidr)
	}
	if ones, _ := ipnet.Mask.Size(); ones < MinPrefixLen {
		return nil, fmt.Errorf("invalid ue subnet %q: prefix wider than /%d", cidr, MinPrefixLen)
	}

	ips := []string{}
	for ip := ipnet.IP.Mask(ipnet.Mask); ipnet.Contains(ip); inc(ip) {
		ips = append(ips, ip.String())
	}

	// network and broadcast addresses are never handed out
	if len(ips) > 2 {
		ips = ips[1 : len(ips)-1]
	}

	return &IPAllocator{
		availableIPs: ips,
		allocated:    make(map[allocationKey]string),
		ipToUser:     make(map[string]allocationKey),
	}, nil
}

func (a *IPAllocator) AllocateIP(supi string, pduSessId int32) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := allocationKey{supi: supi, pduSessId: pduSessId}
	if ip, ok := a.allocated[key]; ok {
		return ip, nil
	}

	if len(a.availableIPs) == 0 {
		return "", ErrPoolExhausted
	}

	ip := a.availableIPs[0]
	a.availableIPs = a.availableIPs[1:]
	a.allocated[key] = ip
	a.ipToUser[ip] = key

	return ip, nil
}

func (a *IPAllocator) ReleaseIP(supi string, pduSessId int32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := allocationKey{supi: supi, pduSessId: pduSessId}
	ip, ok := a.allocated[key]
	if !ok {
		return fmt.Errorf("%s has no address for pdu session %d", supi, pduSessId)
	}

	delete(a.allocated, key)
	delete(a.ipToUser, ip)
	a.availableIPs = append([]string{ip}, a.availableIPs...)

	return nil
}

func (a *IPAllocator) GetUserOk(ip string) (string, int32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key, ok := a.ipToUser[ip]
	if !ok {
		logger.UtilLog.Debugf("no user holds %s", ip)
		return "", 0, false
	}
	return key.supi, key.pduSessId, true
}

func (a *IPAllocator) Available() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.availableIPs)
}

func inc(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}
