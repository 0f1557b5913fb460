/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Command starlane boots a single star: it loads the star's
// configuration, wires its registry, drivers, traversal engine, and
// gateway, and serves the read-only status/metrics HTTP surface until
// interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/utils/clock"

	"github.com/starlane-io/starlane/api/loc"
	"github.com/starlane-io/starlane/api/wave"
	"github.com/starlane-io/starlane/internal/driver"
	"github.com/starlane-io/starlane/internal/exchanger"
	"github.com/starlane-io/starlane/internal/gateway"
	"github.com/starlane-io/starlane/internal/logging"
	"github.com/starlane-io/starlane/internal/metrics"
	"github.com/starlane-io/starlane/internal/registry"
	"github.com/starlane-io/starlane/internal/star"
	"github.com/starlane-io/starlane/internal/starconfig"
	"github.com/starlane-io/starlane/internal/starerr"
	"github.com/starlane-io/starlane/internal/statusapi"
	"github.com/starlane-io/starlane/internal/traversal"
)

func main() {
	configPath := flag.String("config", "", "path to the star's YAML config file")
	addr := flag.String("addr", ":8080", "address the status/metrics HTTP surface listens on")
	dev := flag.Bool("dev", false, "enable human-readable development logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "starlane: -config is required")
		os.Exit(2)
	}

	log, err := logging.New(logging.Options{Development: *dev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "starlane: building logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *addr, log); err != nil {
		log.Error(err, "starlane exited with error")
		os.Exit(1)
	}
}

// run wires every component a star needs and blocks until ctx is
// cancelled, then shuts down in reverse order.
func run(ctx context.Context, configPath, addr string, log logr.Logger) error {
	loader := starconfig.NewFileLoader(configPath, starconfig.DefaultLoaderOptions(), log)
	defer func() { _ = loader.Close() }()

	cfg, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading star config: %w", err)
	}

	key := cfg.Star.StarKey()
	starLog := logging.ForStar(log, key.Constellation, key.Name)
	starSub := loc.StarSub(cfg.Star.Sub)

	reg := registry.NewMemRegistry(starLog)
	if err := registerSelf(ctx, reg, key, starSub); err != nil {
		return fmt.Errorf("registering star's own point: %w", err)
	}

	ex := exchanger.New(clock.RealClock{}, starLog).WithTimeouts(exchanger.Timeouts{
		Low:  cfg.Timeouts.Duration(wave.WaitLow),
		Med:  cfg.Timeouts.Duration(wave.WaitMed),
		High: cfg.Timeouts.Duration(wave.WaitHigh),
	})

	starPoint := loc.StarPoint(key)
	engine := traversal.New(reg, nil, loc.NewSurface(starPoint, loc.LayerGravity))

	skel := &star.Skel{
		Key:       key,
		Point:     starPoint,
		Kind:      loc.StarKind(starSub),
		Registry:  reg,
		Engine:    engine,
		Exchanger: ex,
		Adjacents: adjacentsFrom(cfg.Adjacents),
		Wrangles:  star.NewWrangles(),
		Golden:    star.NewGoldenPath(),
		Log:       starLog,
	}

	manager := driver.NewManager(key, skel.DriverSkel(), starLog)
	skel.Drivers = manager

	s := star.NewStar(skel, noTransportSender{}, noRippler{}, star.Machine{Star: key})

	builder := driver.NewDriversBuilder()
	builder.Add(driver.NewMetaDriverFactory())
	builder.Add(driver.NewStarSubDriverFactory(starSub, manager.Aggregate))
	if err := manager.Init0(ctx, builder); err != nil {
		return fmt.Errorf("initializing driver-driver: %w", err)
	}
	if err := manager.Init1(ctx, builder); err != nil {
		return fmt.Errorf("initializing drivers: %w", err)
	}

	_ = gateway.NewHyperwayInterchange(key, reg, superuserAuthenticator{}, s)

	m := metrics.New()

	go s.Run(ctx)
	go watchDriverStatus(ctx, manager, m)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", statusapi.New(key, manager, s))

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		starLog.Info("status surface listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("status surface: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	s.Stop()
	manager.Stop()
	return nil
}

// registerSelf records the star's own point as a Star-kind particle
// owned by the superuser, so waves addressed to it (status pings,
// reflected replies leaving toward the fabric) resolve through the
// registry exactly like any other particle.
func registerSelf(ctx context.Context, reg *registry.MemRegistry, key loc.StarKey, sub loc.StarSub) error {
	point := loc.StarPoint(key)
	if err := reg.Register(ctx, registry.Registration{
		Point: point,
		Kind:  loc.StarKind(sub),
		Owner: loc.HyperUserPoint(),
	}); err != nil {
		return err
	}
	return reg.AssignStar(ctx, point, key)
}

func adjacentsFrom(configured []starconfig.Adjacent) []star.Adjacent {
	adjacents := make([]star.Adjacent, 0, len(configured))
	for _, a := range configured {
		key := a.StarKey()
		adjacents = append(adjacents, star.Adjacent{
			Key:     key,
			Surface: loc.NewSurface(loc.StarPoint(key), loc.LayerCore),
			Kind:    loc.StarKind(loc.StarSub(a.Sub)),
		})
	}
	return adjacents
}

// watchDriverStatus polls the drivers manager's aggregate on an
// interval and republishes it to the driver status gauge, since
// nothing in the hot dispatch path updates it incrementally.
func watchDriverStatus(ctx context.Context, manager *driver.Manager, m *metrics.Metrics) {
	phases := []string{"Unknown", "Pending", "Init", "Ready", "Retrying", "Fatal"}
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			agg := manager.Aggregate()
			for kind, status := range agg.Children {
				m.SetDriverPhase(kind, phases, status.Phase.String())
			}
		}
	}
}

// noTransportSender stands in for the physical hyperway transport:
// out of scope for this module (registry and gateway are likewise
// contract-plus-in-memory-double only), so any adjacent the star is
// actually configured with would fail fast with a Transport error
// rather than hang.
type noTransportSender struct{}

func (noTransportSender) SendHop(ctx context.Context, hop *wave.DirectedWave, to star.Adjacent) error {
	return starerr.Transport(fmt.Sprintf("no physical hyperway transport configured for adjacent %s", to.Key.String()))
}

// noRippler is the Rippler stand-in for the same reason: a star with
// no configured adjacents never calls it, and one with adjacents gets
// an empty discovery set rather than a hang.
type noRippler struct{}

func (noRippler) Ripple(ctx context.Context, adjacent star.Adjacent) ([]star.Discovery, error) {
	return nil, nil
}

// superuserAuthenticator is the Authenticator stand-in: every
// credential authenticates as the well-known superuser point. A real
// deployment supplies its own Authenticator wired to whatever identity
// provider it trusts; none is in scope here.
type superuserAuthenticator struct{}

func (superuserAuthenticator) Authenticate(ctx context.Context, credentials []byte) (loc.Point, error) {
	return loc.HyperUserPoint(), nil
}
