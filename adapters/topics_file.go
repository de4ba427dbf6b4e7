package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"device-to-mqtt/application"

	"gopkg.in/yaml.v3"
)

type topicsFile struct {
	Topics []topicEntry `yaml:"topics"`
}

type topicEntry struct {
	Suffix string `yaml:"suffix"`
	QoS    uint8  `yaml:"qos"`
	Action string `yaml:"action"`
}

// LoadTopicsFile reads the topic list from a YAML file.
func LoadTopicsFile(path string) ([]application.TopicSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	specs, err := ParseTopics(data)
	if err != nil {
		return nil, fmt.Errorf("parse topics file %s: %w", path, err)
	}
	return specs, nil
}

func ParseTopics(data []byte) ([]application.TopicSpec, error) {
	var f topicsFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	specs := make([]application.TopicSpec, 0, len(f.Topics))
	for _, entry := range f.Topics {
		action := entry.Action
		if action == "" {
			action = application.TopicActionLog
		}
		specs = append(specs, application.TopicSpec{
			Suffix: entry.Suffix,
			QoS:    entry.QoS,
			Action: action,
		})
	}
	return specs, nil
}
