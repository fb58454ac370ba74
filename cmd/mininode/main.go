// Command mininode runs a single GDI mini-node: it loads its YAML
// configuration, starts whichever Monitor back-end is configured, and
// serves the enabled Beacon personalities and FAIR Data Point surface over
// HTTP until signalled to stop.
//
// Process lifecycle grounded on cmd/authn/main.go (flag parsing, fatal
// exits via cos.ExitLogf, nlog setup, background log-flush goroutine);
// generalised for graceful shutdown per spec §5 ("Cancellation": a stop
// signal, joined Monitor/HTTP goroutines, a bounded drain) rather than the
// teacher's abrupt os.Exit(0).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/GenomicDataInfrastructure/gdi-mini-node/api/env"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/beacon"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/cos"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/fname"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/cmn/nlog"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/config"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/fdp"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/httpapi"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/monitor"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/objstore"
	"github.com/GenomicDataInfrastructure/gdi-mini-node/registry"
)

var (
	build     string
	buildtime string
	version   = "0.1.0"

	configDir string
	logDir    string
	httpAddr  string
)

func init() {
	flag.StringVar(&configDir, "config", "", "directory containing app.yaml, fdp.yaml, beacon-*.yaml")
	flag.StringVar(&logDir, "logdir", "", "log directory (overrides app.yaml's logger config)")
	flag.StringVar(&httpAddr, "listen", ":8080", "HTTP listen address")
	nlog.InitFlags(flag.CommandLine)
}

func printVer() {
	fmt.Printf("gdi-mini-node %s (build %s)\n", version, build)
}

func logFlush() {
	for {
		time.Sleep(time.Minute)
		nlog.Flush()
	}
}

func main() {
	if len(os.Args) == 2 && os.Args[1] == "version" {
		printVer()
		os.Exit(0)
	}
	flag.Parse()

	if configDir == "" {
		configDir = cos.GetEnvOrDefault(env.MiniNode.ConfDir, "")
	}
	if configDir == "" {
		cos.ExitLogf("missing configuration directory (use '-config' or %s)", env.MiniNode.ConfDir)
	}

	appCfg, err := config.LoadAppConfig(filepath.Join(configDir, fname.AppConfig))
	if err != nil {
		cos.ExitLogf("failed to load app configuration: %v", err)
	}

	setupLogging(appCfg)
	nlog.Infof("gdi-mini-node %s (build %s)", version, build)
	go logFlush()

	if err := cos.CreateDir(appCfg.DataDir); err != nil {
		cos.ExitLogf("failed to create data directory %q: %v", appCfg.DataDir, err)
	}

	reg, fdpSvc := buildRegistryAndFDP(configDir, appCfg)
	aggregated, sensitive := buildBeaconSetups(configDir)
	if aggregated == nil && sensitive == nil && fdpSvc == nil {
		cos.ExitLogf("no surface enabled: none of beacon-aggregated.yaml, beacon-sensitive.yaml, fdp.yaml is present")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for _, setup := range []*beacon.Setup{aggregated, sensitive} {
		if setup == nil {
			continue
		}
		if err := setup.InitAuth(ctx); err != nil {
			cos.ExitLogf("failed to initialize authentication: %v", err)
		}
	}

	stopMonitor := make(chan struct{})
	var monitorWG sync.WaitGroup
	startMonitor(ctx, appCfg, reg, stopMonitor, &monitorWG)

	router := httpapi.NewRouter(httpapi.Deps{
		App:        appCfg,
		Reg:        reg,
		Aggregated: aggregated,
		Sensitive:  sensitive,
		FDP:        fdpSvc,
		Version:    version,
	})
	srv := &http.Server{Addr: httpAddr, Handler: router}

	srvErr := make(chan error, 1)
	go func() {
		nlog.Infof("listening on %s", httpAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	var exitErr error
	select {
	case s := <-sig:
		nlog.Infof("received signal %v, shutting down", s)
	case exitErr = <-srvErr:
		if exitErr != nil {
			nlog.Errorf("HTTP server failed: %v", exitErr)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		nlog.Warningf("HTTP shutdown: %v", err)
	}

	close(stopMonitor)
	cancel()
	monitorWG.Wait()

	nlog.Flush(true)
	if exitErr != nil {
		os.Exit(1)
	}
	os.Exit(0)
}

func setupLogging(appCfg *config.AppConfig) {
	dir := logDir
	if dir == "" {
		dir = cos.GetEnvOrDefault(env.MiniNode.LogDir, appCfg.DataDir)
	}
	if err := cos.CreateDir(dir); err != nil {
		cos.ExitLogf("failed to create log directory %q: %v", dir, err)
	}
	nlog.SetLogDirRole(dir, "mininode")
	nlog.SetTitle("gdi-mini-node")
}

// buildRegistryAndFDP constructs the shared Registry, seeded with fdp.yaml's
// static catalogs and datasets (when fdp.yaml is present), then builds the
// FDP entity service. fdp.yaml's own Datasets map seeds entries that exist
// purely as FDP/catalog metadata; monitor.ScanDataDirectory below overlays
// the per-dataset metadata.yaml files discovered under DATA_DIR on top of
// them, which is the authoritative source whenever both describe the same
// dataset id (see DESIGN.md).
func buildRegistryAndFDP(configDir string, appCfg *config.AppConfig) (*registry.Registry, *fdp.Service) {
	fdpCfg, ok, err := config.LoadFdpConfig(filepath.Join(configDir, fname.FdpConfig))
	if err != nil {
		cos.ExitLogf("failed to load FDP configuration: %v", err)
	}

	catalogs := map[string]registry.FdpCatalog{}
	if ok {
		for id, c := range fdpCfg.Catalogs {
			since := ""
			if c.Since != nil {
				since = *c.Since
			}
			catalogs[id] = registry.FdpCatalog{ID: id, Title: c.Title, Description: c.Description, Since: since}
		}
	}
	reg := registry.New(catalogs)

	if ok {
		for id, ds := range fdpCfg.Datasets {
			props := registry.FdpDataset{
				ID:               id,
				Title:            ds.Title,
				Description:      ds.Description,
				CatalogID:        ds.CatalogID,
				Keywords:         ds.Keywords,
				Since:            ds.Since,
				Updated:          ds.Updated,
				MinAge:           ds.MinAge,
				MaxAge:           ds.MaxAge,
				IndividualCount:  ds.IndividualCount,
				RecordCount:      ds.RecordCount,
				DataProviderName: ds.DataProviderName,
			}
			reg.AddDataset(id, &props)
		}
	}

	if err := monitor.ScanDataDirectory(appCfg.DataDir, reg); err != nil {
		cos.ExitLogf("failed to scan data directory %q: %v", appCfg.DataDir, err)
	}

	if !ok {
		return reg, nil
	}
	svc, err := fdp.NewService(fdpCfg, reg)
	if err != nil {
		cos.ExitLogf("failed to build FDP service: %v", err)
	}
	return reg, svc
}

func buildBeaconSetups(configDir string) (aggregated, sensitive *beacon.Setup) {
	aggCfg, aggOK, err := config.LoadPersonality(filepath.Join(configDir, fname.BeaconAggregatedConfig), "beacon-aggregated")
	if err != nil {
		cos.ExitLogf("failed to load aggregated Beacon personality: %v", err)
	}
	sensCfg, sensOK, err := config.LoadPersonality(filepath.Join(configDir, fname.BeaconSensitiveConfig), "beacon-sensitive")
	if err != nil {
		cos.ExitLogf("failed to load sensitive Beacon personality: %v", err)
	}
	if !aggOK && !sensOK {
		return nil, nil
	}

	common, commonOK, err := config.LoadBeaconCommon(filepath.Join(configDir, fname.BeaconCommonConfig))
	if err != nil {
		cos.ExitLogf("failed to load Beacon common configuration: %v", err)
	}
	if !commonOK {
		cos.ExitLogf("beacon-common.yaml is required when a Beacon personality is enabled")
	}

	if aggOK {
		aggregated, err = beacon.NewSetup(common, aggCfg, true)
		if err != nil {
			cos.ExitLogf("failed to build aggregated Beacon personality: %v", err)
		}
	}
	if sensOK {
		sensitive, err = beacon.NewSetup(common, sensCfg, false)
		if err != nil {
			cos.ExitLogf("failed to build sensitive Beacon personality: %v", err)
		}
	}
	return aggregated, sensitive
}

// startMonitor picks the Filesystem Observer or the Object-Store
// Synchroniser, per spec §4.2/§5 ("at most one Monitor runs"), and runs it
// in a goroutine joined on wg until stop is closed.
func startMonitor(ctx context.Context, appCfg *config.AppConfig, reg *registry.Registry, stop <-chan struct{}, wg *sync.WaitGroup) {
	wg.Add(1)
	if appCfg.SyncFromStore.IsEnabled() {
		store, err := objstore.New(ctx, appCfg.SyncFromStore)
		if err != nil {
			cos.ExitLogf("failed to initialize object-store sync: %v", err)
		}
		syncer := objstore.NewSyncer(store, appCfg.DataDir, reg)
		if err := syncer.Reconcile(ctx); err != nil {
			cos.ExitLogf("initial object-store reconcile failed: %v", err)
		}
		go func() {
			defer wg.Done()
			syncer.Observe(ctx, stop)
		}()
		return
	}

	observer, err := monitor.NewFSObserver(appCfg.DataDir, reg)
	if err != nil {
		cos.ExitLogf("failed to initialize filesystem observer: %v", err)
	}
	go func() {
		defer wg.Done()
		if err := observer.Observe(stop); err != nil {
			nlog.Errorf("filesystem observer stopped with error: %v", err)
		}
	}()
}
