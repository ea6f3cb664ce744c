// cmd/lanwatch/main.go

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/carverauto/lanwatch/pkg/api"
	"github.com/carverauto/lanwatch/pkg/config"
	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/lifecycle"
	"github.com/carverauto/lanwatch/pkg/mfr"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/poller"
	"github.com/carverauto/lanwatch/pkg/registry"
	"github.com/carverauto/lanwatch/pkg/scan"
	"github.com/carverauto/lanwatch/pkg/sessions"
	"github.com/carverauto/lanwatch/pkg/speed"
	"github.com/carverauto/lanwatch/pkg/traffic"
)

func main() {
	configPath := flag.String("config", "/etc/lanwatch/monitor.json", "Path to config file")
	flag.Parse()

	var cfg config.MonitorConfig
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	host := netinfo.NewLocal()
	reg := registry.New(database, time.Duration(cfg.StaleAfter))

	lookupTimeout := time.Duration(cfg.LookupTimeout)
	classifier := mfr.NewResolver(mfr.NewMacVendorsClient(lookupTimeout), lookupTimeout)

	scanner := scan.NewDefaultScanner(ctx, time.Duration(cfg.ScanTimeout))
	networkScan := registry.NewNetworkScan(reg, scanner, classifier, host)

	counters := traffic.NewHostCounters()
	sampler := traffic.NewSampler(database, reg, counters, host)
	accountant := sessions.NewAccountant(database, reg, counters, host)
	recorder := speed.NewRecorder(database, reg, speed.NewSpeedtestRunner(), host)

	server := api.NewServer(host, reg, networkScan, sampler, accountant, recorder)

	jobs := poller.New(poller.Config{
		ScanSpec:    cfg.ScanCron,
		SampleSpec:  cfg.SampleCron,
		ScanTimeout: time.Duration(cfg.ScanTimeout),
	}, networkScan, sampler)

	if err := lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "lanwatch",
		Handler:     server.Router(),
		Services:    []lifecycle.Service{jobs},
	}); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
