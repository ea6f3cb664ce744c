// Package scan pkg/scan/icmp.go implements the scan primitive with ICMP
// echo probes. Needs a privileged (raw) socket; the factory falls through
// to the TCP prober when the listener cannot be opened.
package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"

	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	defaultICMPTimeout = 3 * time.Second
	sendPacing         = 2 * time.Millisecond
	readBufferSize     = 1500
)

// ICMPScanner pings every host in a CIDR and reports the responders.
type ICMPScanner struct {
	timeout time.Duration
}

// NewICMPScanner returns an ICMP echo Scanner.
func NewICMPScanner(timeout time.Duration) *ICMPScanner {
	if timeout <= 0 {
		timeout = defaultICMPTimeout
	}

	return &ICMPScanner{timeout: timeout}
}

// Scan implements Scanner.
func (s *ICMPScanner) Scan(ctx context.Context, cidr string) ([]models.ScanResult, error) {
	ips, err := GenerateIPsFromCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid scan range %q: %w", cidr, err)
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("failed to open ICMP listener: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	var (
		mu    sync.Mutex
		alive = make(map[string]bool)
		done  = make(chan struct{})
	)

	go func() {
		defer close(done)

		s.collectReplies(conn, alive, &mu)
	}()

	id := os.Getpid() & 0xffff

	for seq, ip := range ips {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := sendEcho(conn, ip, id, seq); err != nil {
			continue
		}

		time.Sleep(sendPacing)
	}

	// Let stragglers answer before the deadline closes the reader.
	time.Sleep(s.timeout)

	_ = conn.SetReadDeadline(time.Now())
	<-done

	arpTable := ARPTable(ctx)

	results := make([]models.ScanResult, 0, len(alive))

	mu.Lock()
	defer mu.Unlock()

	for ip := range alive {
		results = append(results, models.ScanResult{
			IP:  ip,
			MAC: lookupARP(arpTable, ip),
		})
	}

	return results, nil
}

func (s *ICMPScanner) collectReplies(conn *icmp.PacketConn, alive map[string]bool, mu *sync.Mutex) {
	packet := make([]byte, readBufferSize)

	_ = conn.SetReadDeadline(time.Now().Add(s.timeout * 2))

	for {
		n, peer, err := conn.ReadFrom(packet)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return
			}

			continue
		}

		msg, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), packet[:n])
		if err != nil {
			continue
		}

		if msg.Type == ipv4.ICMPTypeEchoReply {
			mu.Lock()
			alive[peer.String()] = true
			mu.Unlock()
		}
	}
}

func sendEcho(conn *icmp.PacketConn, ip net.IP, id, seq int) error {
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("lanwatch"),
		},
	}

	data, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	_, err = conn.WriteTo(data, &net.IPAddr{IP: ip})

	return err
}
