package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hsadmin/fancontrol/internal/actuator"
	"github.com/hsadmin/fancontrol/internal/api"
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/hsadmin/fancontrol/internal/hwmon"
	"github.com/hsadmin/fancontrol/internal/persistence"
	"github.com/hsadmin/fancontrol/internal/sensors"
	"github.com/hsadmin/fancontrol/internal/statistics"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run fancontrol as root")
	}

	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	store := fanctrl.NewStore(pers)
	permissions := api.NewTokenPermissions(configuration.CurrentConfig.Api.WriteTokens)
	service := fanctrl.NewService(store, permissions)

	controllers := InitializeObjects(store, service)
	if len(controllers) == 0 {
		ui.Fatal("No valid fan configurations, exiting.")
	}

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		enabled := configuration.CurrentConfig.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			g.Add(func() error {
				port := configuration.CurrentConfig.Statistics.Port
				if port <= 0 || port >= 65535 {
					port = 9000
				}
				addr := fmt.Sprintf(":%d", port)
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				server := &http.Server{Addr: addr, Handler: mux}

				go func() {
					<-ctx.Done()
					ui.Info("Stopping statistics server...")
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					_ = server.Shutdown(timeoutCtx)
				}()

				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: " + err.Error())
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		enabled := configuration.CurrentConfig.Api.Enabled
		if enabled {
			// === REST API
			echoRest := api.CreateRestService(service)
			g.Add(func() error {
				addr := fmt.Sprintf("%s:%d",
					configuration.CurrentConfig.Api.Host,
					configuration.CurrentConfig.Api.Port)

				go func() {
					<-ctx.Done()
					ui.Info("Stopping REST api...")
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					_ = echoRest.Shutdown(timeoutCtx)
				}()

				if err := echoRest.Start(addr); err != nil && err != http.ErrServerClosed {
					ui.Error("Cannot start REST api endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping REST api: " + err.Error())
				} else {
					ui.Info("REST api stopped.")
				}
			})
		}
	}
	{
		// === fan control loops
		for fanId, controller := range controllers {
			id := fanId
			c := controller

			g.Add(func() error {
				err := c.Run(ctx)
				ui.Info("Control loop for fan %s stopped.", id)
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Error running control loop for fan %s: %v", id, err)
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

// InitializeObjects resolves hwmon backends, registers sensors and fans
// and wires one control loop per fan. The loops are returned keyed by
// fan id and registered with the service for status reporting.
func InitializeObjects(store *fanctrl.Store, service *fanctrl.Service) map[string]fanctrl.FanController {
	chips := hwmon.GetChips()

	var sensorList []sensors.Sensor
	for _, config := range configuration.CurrentConfig.Sensors {
		if config.HwMon != nil {
			if err := hwmon.UpdateSensorConfigFromHwMonControllers(chips, &config); err != nil {
				ui.Fatal("Couldn't resolve hwmon device for sensor %s: %v. Run 'fancontrol detect' and correct any mistake.", config.ID, err)
			}
		}

		sensor, err := sensors.NewSensor(config)
		if err != nil {
			ui.Fatal("Unable to process sensor configuration: %s", config.ID)
		}
		sensorList = append(sensorList, sensor)

		currentValue, err := sensor.GetValue()
		if err != nil {
			ui.Warning("Error reading sensor %s: %v", config.ID, err)
		}
		sensor.SetMovingAvg(currentValue)

		sensors.RegisterSensor(sensor)
	}

	sensorCollector := statistics.NewSensorCollector(sensorList)
	statistics.Register(sensorCollector)

	controllers := map[string]fanctrl.FanController{}
	for _, config := range configuration.CurrentConfig.Fans {
		if config.HwMon != nil {
			if err := hwmon.UpdateFanConfigFromHwMonControllers(chips, &config); err != nil {
				ui.Fatal("Couldn't resolve hwmon device for fan %s: %v", config.ID, err)
			}
		}

		sensor, ok := sensors.GetSensor(config.Sensor)
		if !ok {
			ui.Fatal("Fan %s references unknown sensor: %s", config.ID, config.Sensor)
		}

		act, err := actuator.NewActuator(config)
		if err != nil {
			ui.Fatal("Unable to process fan configuration: %s", config.ID)
		}

		if err := store.RegisterFan(config); err != nil {
			ui.Fatal("Unable to register fan %s: %v", config.ID, err)
		}

		controller := fanctrl.NewFanController(
			store,
			sensor,
			act,
			configuration.CurrentConfig.ControllerAdjustmentTickRate,
			configuration.CurrentConfig.TickIoTimeout,
			configuration.CurrentConfig.TempRollingWindowSize,
			configuration.CurrentConfig.MaxSensorFailures,
		)
		controllers[config.ID] = controller
		service.RegisterController(config.ID, controller)
	}

	fanCollector := statistics.NewFanCollector(service)
	statistics.Register(fanCollector)

	return controllers
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}
