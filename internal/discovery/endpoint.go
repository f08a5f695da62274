package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Endpoint represents a model runtime found on the network
type Endpoint struct {
	// Instance is the advertised service instance name (e.g., "quotegen-runtime on studio")
	Instance string

	// Host is the mDNS hostname (e.g., "studio.local.")
	Host string

	// IP is the address to connect to, IPv4 preferred
	IP string

	// Port is the runtime HTTP port
	Port int

	// Metadata contains the TXT record fields
	// Common fields: "version", "api", "models"
	Metadata map[string]string

	// DiscoveredAt is when the endpoint was first seen
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the endpoint
func (e *Endpoint) String() string {
	return fmt.Sprintf("%s (%s) at %s", e.Instance, e.Host, e.Address())
}

// Address returns host:port suitable for runtime.NewClient
func (e *Endpoint) Address() string {
	return net.JoinHostPort(e.IP, strconv.Itoa(e.Port))
}

// BaseURL returns the HTTP base URL for the runtime
func (e *Endpoint) BaseURL() string {
	return "http://" + e.Address()
}

// GetMetadata retrieves a TXT value by key, or returns empty string if not found
func (e *Endpoint) GetMetadata(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}
