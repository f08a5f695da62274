package discovery

import (
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func serviceEntry(instance, host string, port int, v4, v6 []net.IP, text ...string) *zeroconf.ServiceEntry {
	entry := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	entry.HostName = host
	entry.Port = port
	entry.AddrIPv4 = v4
	entry.AddrIPv6 = v6
	entry.Text = text
	return entry
}

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:     "runtime with IPv4",
			entry:    serviceEntry("studio", "studio.local.", 8765, []net.IP{net.ParseIP("192.168.4.16")}, nil, "api=v1"),
			wantIP:   "192.168.4.16",
			wantPort: 8765,
		},
		{
			name:     "custom port",
			entry:    serviceEntry("lab", "lab.local.", 9000, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantIP:   "10.0.0.5",
			wantPort: 9000,
		},
		{
			name:     "no port defaults",
			entry:    serviceEntry("lab", "lab.local.", 0, []net.IP{net.ParseIP("172.16.0.1")}, nil),
			wantIP:   "172.16.0.1",
			wantPort: DefaultPort,
		},
		{
			name:    "no instance name",
			entry:   serviceEntry("", "lab.local.", 8765, []net.IP{net.ParseIP("10.0.0.5")}, nil),
			wantNil: true,
		},
		{
			name:    "no IP address",
			entry:   serviceEntry("studio", "studio.local.", 8765, nil, nil),
			wantNil: true,
		},
		{
			name:     "IPv6 only",
			entry:    serviceEntry("v6", "v6.local.", 8765, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantIP:   "fe80::1",
			wantPort: 8765,
		},
		{
			name:     "prefers IPv4",
			entry:    serviceEntry("dual", "dual.local.", 8765, []net.IP{net.ParseIP("192.168.1.50")}, []net.IP{net.ParseIP("fe80::2")}),
			wantIP:   "192.168.1.50",
			wantPort: 8765,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if endpoint != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", endpoint)
				}
				return
			}

			if endpoint == nil {
				t.Fatal("parseServiceEntry() = nil, want endpoint")
			}
			if endpoint.Instance != tt.entry.Instance {
				t.Errorf("endpoint.Instance = %v, want %v", endpoint.Instance, tt.entry.Instance)
			}
			if endpoint.IP != tt.wantIP {
				t.Errorf("endpoint.IP = %v, want %v", endpoint.IP, tt.wantIP)
			}
			if endpoint.Port != tt.wantPort {
				t.Errorf("endpoint.Port = %v, want %v", endpoint.Port, tt.wantPort)
			}
			if endpoint.Host != tt.entry.HostName {
				t.Errorf("endpoint.Host = %v, want %v", endpoint.Host, tt.entry.HostName)
			}
			if time.Since(endpoint.DiscoveredAt) > time.Second {
				t.Errorf("endpoint.DiscoveredAt is not recent: %v", endpoint.DiscoveredAt)
			}
		})
	}

	if scanner.parseServiceEntry(nil) != nil {
		t.Error("parseServiceEntry(nil) should return nil")
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"api=v1", "version=1.0.0", "flag", "models=2", "=orphan", "eq=a=b"})
	want := map[string]string{
		"api":     "v1",
		"version": "1.0.0",
		"flag":    "",
		"models":  "2",
		"eq":      "a=b",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseTXT() = %v, want %v", got, want)
	}
}

func TestFormatTXTRoundTrip(t *testing.T) {
	meta := map[string]string{"version": "1.0.0", "api": "v1", "models": "3"}
	records := formatTXT(meta)

	want := []string{"api=v1", "models=3", "version=1.0.0"}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("formatTXT() = %v, want %v", records, want)
	}
	if !reflect.DeepEqual(parseTXT(records), meta) {
		t.Errorf("parseTXT(formatTXT()) = %v, want %v", parseTXT(records), meta)
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestAdvertiseValidation(t *testing.T) {
	if _, err := Advertise("", 8765, nil); err == nil {
		t.Error("Advertise() with empty instance should fail")
	}
	if _, err := Advertise("runtime", 0, nil); err == nil {
		t.Error("Advertise() with port 0 should fail")
	}
	if _, err := Advertise("runtime", 70000, nil); err == nil {
		t.Error("Advertise() with out-of-range port should fail")
	}

	var nilAd *Advertisement
	nilAd.Shutdown()
}

// Live mDNS browsing needs multicast on the host network and is exercised
// manually with: quotegen-runtime serve & quotegen discover
