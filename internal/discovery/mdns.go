// Package discovery advertises the strip over mDNS and finds other strips on
// the LAN.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service advertised by every stripd instance.
const ServiceType = "_stripd._tcp"

// Config describes what to advertise.
type Config struct {
	// Instance is the human readable name; defaults to the hostname.
	Instance string
	Port     int
	Version  string
	// Extra TXT records, "key=value".
	TXT []string
}

// Advertiser answers mDNS queries for this instance until Shutdown.
type Advertiser struct {
	server *mdns.Server
	logger *slog.Logger
}

// TXTRecords returns the TXT records for cfg. Clients use path to find the
// legacy read endpoint without probing.
func TXTRecords(cfg Config) []string {
	txt := []string{"path=/read", "api=/api/light"}
	if cfg.Version != "" {
		txt = append(txt, "version="+cfg.Version)
	}
	return append(txt, cfg.TXT...)
}

// Advertise starts responding to queries for ServiceType.
func Advertise(cfg Config, logger *slog.Logger) (*Advertiser, error) {
	instance := cfg.Instance
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("resolve instance name: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", cfg.Port, nil, TXTRecords(cfg))
	if err != nil {
		return nil, fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("start mDNS responder: %w", err)
	}

	logger.Info("Advertising over mDNS", "instance", instance, "service", ServiceType, "port", cfg.Port)
	return &Advertiser{server: server, logger: logger}, nil
}

// Shutdown stops answering queries.
func (a *Advertiser) Shutdown() error {
	a.logger.Debug("Stopping mDNS responder")
	return a.server.Shutdown()
}

// Strip is one instance found on the network.
type Strip struct {
	Name string
	Host string
	Addr net.IP
	Port int
	TXT  map[string]string
}

// URL returns the base HTTP URL of the strip.
func (s Strip) URL() string {
	return "http://" + net.JoinHostPort(s.Addr.String(), fmt.Sprint(s.Port))
}

// Browse queries the LAN for stripd instances until timeout or ctx ends.
func Browse(ctx context.Context, timeout time.Duration, logger *slog.Logger) ([]Strip, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(entries)
		errCh <- mdns.Query(&mdns.QueryParam{
			Service:             ServiceType,
			Domain:              "local",
			Timeout:             timeout,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
		})
	}()

	seen := make(map[string]bool)
	var strips []Strip
	for entry := range entries {
		if ctx.Err() != nil {
			// Drain so the query goroutine can finish.
			continue
		}
		logger.Debug("mDNS entry", "name", entry.Name, "addr", entry.AddrV4, "port", entry.Port)
		if entry.AddrV4 == nil || seen[entry.Name] {
			continue
		}
		seen[entry.Name] = true
		strips = append(strips, Strip{
			Name: instanceName(entry.Name),
			Host: entry.Host,
			Addr: entry.AddrV4,
			Port: entry.Port,
			TXT:  parseTXT(entry.InfoFields),
		})
	}

	if err := <-errCh; err != nil {
		return strips, fmt.Errorf("mDNS query: %w", err)
	}
	return strips, ctx.Err()
}

// instanceName strips the service suffix from a full entry name.
func instanceName(full string) string {
	name, _, found := strings.Cut(full, "."+ServiceType)
	if !found {
		return strings.TrimSuffix(full, ".")
	}
	return strings.ReplaceAll(name, `\ `, " ")
}

func parseTXT(fields []string) map[string]string {
	txt := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, _ := strings.Cut(f, "=")
		txt[k] = v
	}
	return txt
}
