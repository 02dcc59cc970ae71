//go:build linux
// +build linux

package eventloop

import (
	"io/ioutil"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

//Config file-based loop settings, YAML or TOML
type Config struct {
	LogLevel        string `yaml:"log_level" toml:"log_level"`
	EventBufferSize int    `yaml:"event_buffer_size" toml:"event_buffer_size"`
	LockOSThread    bool   `yaml:"lock_os_thread" toml:"lock_os_thread"`
}

//LoadConfig reads loop settings from filePath; the format is picked by the
//file suffix, ".toml" for TOML and anything else parsed as YAML.
func LoadConfig(filePath string) (*Config, error) {
	file, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	config := &Config{}
	if strings.HasSuffix(filePath, ".toml") {
		err = toml.Unmarshal(file, config)
	} else {
		err = yaml.Unmarshal(file, config)
	}
	if err != nil {
		return nil, err
	}
	return config, nil
}

//NewLoopFromConfig builds a Loop from a config file.
func NewLoopFromConfig(filePath string) (*Loop, error) {
	config, err := LoadConfig(filePath)
	if err != nil {
		return nil, err
	}
	return NewLoop(
		WithEventBufferSize(config.EventBufferSize),
		WithLockOSThread(config.LockOSThread),
		WithLogLevel(config.LogLevel),
	)
}
