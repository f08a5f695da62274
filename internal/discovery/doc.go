// Package discovery finds and advertises quotegen model runtimes over mDNS.
//
// Runtimes register the "_quotegen._tcp" service type in the "local." domain.
// The CLI browses for that type when no runtime address is configured.
//
// # Discovery Process
//
//  1. Broadcasts mDNS queries on the local network
//  2. Collects "_quotegen._tcp" advertisements until the timeout
//  3. Converts each entry to an Endpoint (instance, host, address, TXT metadata)
//  4. Returns the endpoints sorted by instance name
//
// # Usage Example
//
//	endpoints, err := discovery.Scan(ctx, 5*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ep := range endpoints {
//	    fmt.Printf("%s -> %s\n", ep.Instance, ep.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Runtime and client must share a network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
