package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/harunnryd/heartbeat/pkg/configutil"
	"github.com/harunnryd/heartbeat/pkg/props"
	"github.com/harunnryd/heartbeat/pkg/sinks"
	kafkasink "github.com/harunnryd/heartbeat/pkg/sinks/kafka"
	wssink "github.com/harunnryd/heartbeat/pkg/sinks/websocket"
)

type sinkCheckConfig struct {
	Sink struct {
		Provider string         `mapstructure:"provider"`
		Settings map[string]any `mapstructure:"settings"`
	} `mapstructure:"sink"`
}

func main() {
	configPath := flag.String("config", "examples/watchtime/config.yaml", "")
	provider := flag.String("provider", "", "override sink.provider")
	event := flag.String("event", "heartbeat_probe", "")
	alternate := flag.Bool("alternate", false, "send over the alternate transport")
	timeout := flag.Duration("timeout", 5*time.Second, "")
	flag.Parse()

	cfg, err := loadSinkConfig(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	name := cfg.Sink.Provider
	if *provider != "" {
		name = *provider
	}
	if name == "" {
		fmt.Println("usage: sink_check -config=... [-provider=log|websocket|kafka]")
		os.Exit(1)
	}

	registry := sinks.NewRegistry()
	registry.Register("websocket", wssink.NewFromSettings)
	registry.Register("kafka", kafkasink.NewFromSettings)
	sink, err := registry.Build(name, configutil.ExpandEnv(cfg.Sink.Settings))
	if err != nil {
		fmt.Println("sink error:", err)
		os.Exit(1)
	}

	transport := sinks.TransportDefault
	if *alternate {
		transport = sinks.TransportAlternate
	}
	flushID := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	err = sink.Track(ctx, *event, props.Of(
		"contentId", "probe",
		"watchSeconds", 0,
		"sentBy", "sink_check",
	), sinks.Options{Transport: transport, FlushID: flushID})
	if c, ok := sink.(interface{ Close() error }); ok {
		_ = c.Close()
	}
	if err != nil {
		fmt.Println("delivery error:", err)
		os.Exit(1)
	}
	fmt.Println("flush_id:", flushID)
}

func loadSinkConfig(path string) (sinkCheckConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return sinkCheckConfig{}, err
	}
	var cfg sinkCheckConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return sinkCheckConfig{}, err
	}
	return cfg, nil
}
