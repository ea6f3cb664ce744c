// Package scan pkg/scan/arp.go reads the host ARP cache to recover MAC
// addresses for hosts the scan primitive saw but could not identify.
package scan

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/carverauto/lanwatch/pkg/models"
)

var macPattern = regexp.MustCompile(`([0-9A-Fa-f]{2}[-:]){5}[0-9A-Fa-f]{2}`)

const procNetARP = "/proc/net/arp"

// ARPTable returns the current IP -> MAC mapping from the kernel ARP
// cache, preferring /proc/net/arp and falling back to parsing `arp -a`.
// MACs come back uppercase colon-separated. Failures yield an empty map;
// ARP enrichment is best-effort.
func ARPTable(ctx context.Context) map[string]string {
	if table := readProcARP(); len(table) > 0 {
		return table
	}

	return readARPCommand(ctx)
}

// MACForIP looks a single address up in the ARP cache.
func MACForIP(ctx context.Context, ip string) string {
	if mac, ok := ARPTable(ctx)[ip]; ok {
		return mac
	}

	return models.Unknown
}

func readProcARP() map[string]string {
	content, err := os.ReadFile(procNetARP)
	if err != nil {
		return nil
	}

	table := make(map[string]string)

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if i == 0 { // header row
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		ip, mac := fields[0], fields[3]
		if !macPattern.MatchString(mac) || mac == "00:00:00:00:00:00" {
			continue
		}

		table[ip] = normalizeMAC(mac)
	}

	return table
}

func readARPCommand(ctx context.Context) map[string]string {
	output, err := exec.CommandContext(ctx, "arp", "-a").Output()
	if err != nil {
		return map[string]string{}
	}

	return parseARPOutput(string(output))
}

// parseARPOutput extracts IP/MAC pairs from `arp -a` output, which differs
// across platforms but always carries one host per line.
func parseARPOutput(output string) map[string]string {
	table := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		mac := macPattern.FindString(line)
		if mac == "" || strings.HasPrefix(mac, "00:00:00") {
			continue
		}

		ip := firstIPv4(line)
		if ip == "" {
			continue
		}

		table[ip] = normalizeMAC(mac)
	}

	return table
}

var ipv4Pattern = regexp.MustCompile(`(\d{1,3}\.){3}\d{1,3}`)

func firstIPv4(line string) string {
	return ipv4Pattern.FindString(line)
}

func normalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}
