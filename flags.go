package main

import (
	"device-to-mqtt/adapters"
	"device-to-mqtt/application"

	"github.com/urfave/cli/v2"
)

var FlagLogLevel = &cli.StringFlag{
	Name:     "log-level",
	EnvVars:  []string{"LOG_LEVEL"},
	Value:    "info",
	Required: false,
}

var FlagLogWriter = &cli.StringFlag{
	Name:     "log-writer",
	Usage:    "one of: [console, json]",
	EnvVars:  []string{"LOG_WRITER"},
	Value:    "console",
	Required: false,
}

var FlagHardwareID = &cli.StringFlag{
	Name:     "hardware-id",
	Usage:    "64-bit hardware id in hex, read from --interface when empty",
	EnvVars:  []string{"HARDWARE_ID"},
	Required: false,
}

var FlagInterface = &cli.StringFlag{
	Name:     "interface",
	Usage:    "network interface whose MAC is the hardware id, first one when empty",
	EnvVars:  []string{"HARDWARE_INTERFACE"},
	Required: false,
}

var FlagTopicsFile = &cli.PathFlag{
	Name:     "topics-file",
	Usage:    "yaml file with the topics to subscribe",
	EnvVars:  []string{"TOPICS_FILE"},
	Required: false,
}

var FlagMaxTopics = &cli.IntFlag{
	Name:     "max-topics",
	Usage:    "maximum number of topics, 0 for unbounded",
	EnvVars:  []string{"MAX_TOPICS"},
	Value:    0,
	Required: false,
}

var FlagDryRun = &cli.BoolFlag{
	Name:     "dry-run",
	Usage:    "print the registered topics and exit",
	EnvVars:  []string{"DRY_RUN"},
	Required: false,
}

var FlagReportInterval = &cli.DurationFlag{
	Name:     "report-interval",
	EnvVars:  []string{"REPORT_INTERVAL"},
	Value:    application.DeviceServiceDefaultReportInterval,
	Required: false,
}

var FlagMQTTUrl = &cli.StringFlag{
	Name:     "mqtt-url",
	Usage:    "tcp://broker:port",
	EnvVars:  []string{"MQTT_URL"},
	Value:    "tcp://localhost:1883",
	Required: false,
}

var FlagMQTTUsername = &cli.StringFlag{
	Name:     "mqtt-username",
	EnvVars:  []string{"MQTT_USERNAME"},
	Required: false,
}

var FlagMQTTPassword = &cli.StringFlag{
	Name:     "mqtt-password",
	EnvVars:  []string{"MQTT_PASSWORD"},
	Required: false,
}

var FlagMQTTConnectTimeout = &cli.DurationFlag{
	Name:     "mqtt-connect-timeout",
	EnvVars:  []string{"MQTT_CONNECT_TIMEOUT"},
	Value:    adapters.MQTTDefaultConnectTimeout,
	Required: false,
}
