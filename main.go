package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"device-to-mqtt/adapters"
	"device-to-mqtt/application"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var Flags = []cli.Flag{
	FlagLogLevel,
	FlagLogWriter,
	FlagHardwareID,
	FlagInterface,
	FlagTopicsFile,
	FlagMaxTopics,
	FlagDryRun,
	FlagReportInterval,
	FlagMQTTUrl,
	FlagMQTTUsername,
	FlagMQTTPassword,
	FlagMQTTConnectTimeout,
}

func main() {
	var logger zerolog.Logger

	app := cli.App{
		Name:    "device-to-mqtt",
		Usage:   "subscribe device namespaced MQTT topics",
		Version: "v0.0.1",
		Flags:   Flags,
		Before: func(ctx *cli.Context) error {
			var logWriter io.Writer
			switch ctx.String(FlagLogWriter.Name) {
			case "console":
				logWriter = zerolog.ConsoleWriter{
					Out:        os.Stderr,
					TimeFormat: time.RFC3339Nano,
				}
			case "json":
				logWriter = os.Stderr
			default:
				return fmt.Errorf("invalid log writer")
			}

			logger = zerolog.New(logWriter).With().Timestamp().
				Str("service", "device-to-mqtt").
				Str("module", "main").
				Logger()

			level, err := zerolog.ParseLevel(ctx.String(FlagLogLevel.Name))
			if err != nil {
				return err
			}

			zerolog.SetGlobalLevel(level)

			return nil
		},
		Action: func(ctx *cli.Context) error {
			logger.Info().Msg("service starting...")

			hardwareID, err := hardwareIDProvider(ctx)
			if err != nil {
				return err
			}

			registry, err := application.NewTopicRegistry(application.TopicRegistryParams{
				HardwareID: hardwareID,
				MaxTopics:  ctx.Int(FlagMaxTopics.Name),
				Log:        logger.With().Str("module", "topic-registry").Logger(),
			})
			if err != nil {
				return err
			}
			logger.Info().Msgf("device id: %s", registry.DeviceID())

			var specs []application.TopicSpec
			if path := ctx.Path(FlagTopicsFile.Name); path != "" {
				specs, err = adapters.LoadTopicsFile(path)
				if err != nil {
					return err
				}
			}

			handlers := application.DefaultTopicHandlers(registry, logger.With().Str("module", "topic-handler").Logger())
			if err := application.PopulateRegistry(registry, specs, handlers); err != nil {
				return err
			}

			if ctx.Bool(FlagDryRun.Name) {
				return registry.Display(ctx.App.Writer)
			}

			appCtx, cancel := context.WithCancel(logger.WithContext(context.Background()))
			defer cancel()
			go func() {
				c := make(chan os.Signal, 1)
				signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

				<-c

				logger.Warn().Msg("interrupt signal received")
				cancel()
			}()

			willPayload, err := json.Marshal(application.NewDeviceStatus(registry, false))
			if err != nil {
				return err
			}

			mqttClient := adapters.NewMQTTClient(adapters.MQTTClientParams{
				ClientID:       registry.DeviceID(),
				Username:       ctx.String(FlagMQTTUsername.Name),
				Password:       ctx.String(FlagMQTTPassword.Name),
				MQTTUrl:        ctx.String(FlagMQTTUrl.Name),
				WillTopic:      application.StatusTopic(registry.DeviceID()),
				WillPayload:    willPayload,
				ConnectTimeout: ctx.Duration(FlagMQTTConnectTimeout.Name),
				Log:            logger.With().Str("module", "mqtt-client").Logger(),
			})

			deviceService, err := application.NewDeviceService(application.DeviceServiceParams{
				Registry:       registry,
				MQTTClient:     mqttClient,
				ReportInterval: ctx.Duration(FlagReportInterval.Name),
				Log:            logger.With().Str("module", "device-service").Logger(),
			})
			if err != nil {
				return err
			}

			logger.Info().Msg("service started")
			err = deviceService.Run(appCtx)
			if err != nil {
				return err
			}

			logger.Info().Msg("service terminating...")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Err(err).Msg("service terminated")
		os.Exit(1)
	}
}

func hardwareIDProvider(ctx *cli.Context) (application.HardwareIDProvider, error) {
	if s := ctx.String(FlagHardwareID.Name); s != "" {
		return adapters.ParseHardwareID(s)
	}
	return adapters.InterfaceHardwareID{Name: ctx.String(FlagInterface.Name)}, nil
}
