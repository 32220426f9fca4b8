// Package sysinfo discovers the static facts of the host: memory, CPUs and identity.
package sysinfo

import (
	"net"

	"emperror.dev/errors"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/l3lackShark/procmon/stats"
)

const (
	bytesPerMB = 1000 * 1000
	unknown    = "unknown"
)

type (
	// Facts are captured once before sampling starts and never change.
	Facts struct {
		TotalMemoryMB int64   `json:"totalMemoryMB"`
		CPUCount      int     `json:"cpuCount"`
		CPUMHz        float64 `json:"cpuMHz"`
	}

	Host struct {
		Hostname string `json:"hostname"`
		IP       string `json:"ip"`
	}

	// Probes are the OS queries the collector is built on.
	Probes struct {
		VirtualMemory func() (*mem.VirtualMemoryStat, error)
		CPUCounts     func(logical bool) (int, error)
		CPUInfo       func() ([]cpu.InfoStat, error)
		HostInfo      func() (*host.InfoStat, error)
		LookupHost    func(host string) ([]string, error)
		OutboundIP    func() (string, error)
	}

	Collector struct {
		probes Probes
		logger zerolog.Logger
	}
)

// EnvironmentQueryError means a host fact could not be read or made sense of.
type EnvironmentQueryError struct {
	Fact string
	Err  error
}

func (e *EnvironmentQueryError) Error() string {
	return "query " + e.Fact + ": " + e.Err.Error()
}

func (e *EnvironmentQueryError) Unwrap() error { return e.Err }

// DefaultProbes reads the live system through gopsutil.
func DefaultProbes() Probes {
	return Probes{
		VirtualMemory: mem.VirtualMemory,
		CPUCounts:     cpu.Counts,
		CPUInfo:       cpu.Info,
		HostInfo:      host.Info,
		LookupHost:    net.LookupHost,
		OutboundIP:    outboundIP,
	}
}

func New(probes Probes, logger zerolog.Logger) *Collector {
	return &Collector{probes: probes, logger: logger.With().Str("component", "sysinfo").Logger()}
}

// MemoryMB returns total installed memory in megabytes.
func (c *Collector) MemoryMB() (int64, error) {
	vm, err := c.probes.VirtualMemory()
	if err != nil {
		return 0, &EnvironmentQueryError{Fact: "total memory", Err: err}
	}
	if vm == nil || vm.Total == 0 {
		return 0, &EnvironmentQueryError{Fact: "total memory", Err: errors.NewPlain("no total reported")}
	}

	total := int64(vm.Total / bytesPerMB)
	c.logger.Info().Msgf("Current system has Total RAM of size %d MB i.e. %v GB", total, stats.Round(float64(total)/1024, 2))
	return total, nil
}

// CPUInfo returns the logical CPU count and the clock speed of the first core.
func (c *Collector) CPUInfo() (count int, mhz float64, err error) {
	count, err = c.probes.CPUCounts(true)
	if err != nil {
		return 0, 0, &EnvironmentQueryError{Fact: "cpu count", Err: err}
	}
	if count <= 0 {
		return 0, 0, &EnvironmentQueryError{Fact: "cpu count", Err: errors.Errorf("invalid count %d", count)}
	}
	c.logger.Info().Msgf("Current system has CPU(s): %d", count)

	infos, err := c.probes.CPUInfo()
	if err != nil {
		return 0, 0, &EnvironmentQueryError{Fact: "cpu clock", Err: err}
	}
	if len(infos) == 0 {
		return 0, 0, &EnvironmentQueryError{Fact: "cpu clock", Err: errors.NewPlain("no cpu entries reported")}
	}
	mhz = infos[0].Mhz
	c.logger.Info().Msgf("Current system has CPU MHz: %v", mhz)

	return count, mhz, nil
}

// Collect gathers every fact. Any failure is fatal to startup.
func (c *Collector) Collect() (Facts, error) {
	memMB, err := c.MemoryMB()
	if err != nil {
		return Facts{}, err
	}
	count, mhz, err := c.CPUInfo()
	if err != nil {
		return Facts{}, err
	}
	return Facts{TotalMemoryMB: memMB, CPUCount: count, CPUMHz: mhz}, nil
}

// Host resolves hostname and primary IPv4 address. Lookups that fail are
// reported as "unknown"; identity is informational only.
func (c *Collector) Host() Host {
	h := Host{Hostname: unknown, IP: unknown}

	info, err := c.probes.HostInfo()
	if err != nil || info == nil || info.Hostname == "" {
		c.logger.Warn().Err(err).Msg("hostname unavailable")
		return h
	}
	h.Hostname = info.Hostname

	if addrs, err := c.probes.LookupHost(h.Hostname); err == nil {
		for _, a := range addrs {
			if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
				h.IP = a
				return h
			}
		}
	}

	if ip, err := c.probes.OutboundIP(); err == nil {
		h.IP = ip
	} else {
		c.logger.Warn().Err(err).Msg("primary ip unavailable")
	}
	return h
}

// UDP dial sends nothing, it only picks the route's source address
func outboundIP() (string, error) {
	conn, err := net.Dial("udp", "192.0.2.1:9")
	if err != nil {
		return "", errors.Wrap(err, "net.Dial()")
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", errors.NewPlain("unexpected local address type")
	}
	return addr.IP.String(), nil
}
