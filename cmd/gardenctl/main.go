// Command gardenctl is the operator CLI described in SPEC_FULL.md §4,
// grounded on ChuLiYu-raft-recovery's cobra command tree
// (internal/cli/cli.go): a root command with persistent broker/prefix
// flags and one subcommand per operator action. It talks to the
// controller purely over its public MQTT surface — the same surface a
// dashboard or the provisioning portal would use — for bring-up and
// integration testing without standing up a real dashboard.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/spf13/cobra"
)

var (
	brokerAddr string
	prefix     string
)

func main() {
	root := buildRootCommand()
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func buildRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gardenctl",
		Short: "Operator CLI for a networked irrigation controller",
	}
	root.PersistentFlags().StringVar(&brokerAddr, "broker", "localhost:1883", "MQTT broker address (host:port)")
	root.PersistentFlags().StringVar(&prefix, "prefix", "garden", "controller topic prefix")

	root.AddCommand(buildWaterCommand())
	root.AddCommand(buildStopCommand())
	root.AddCommand(buildStopAllCommand())
	root.AddCommand(buildLightCommand())
	root.AddCommand(buildConfigCommand())
	root.AddCommand(buildWatchCommand())
	return root
}

func connect(clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + brokerAddr)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return c, nil
}

func publishOnce(topic string, payload []byte) error {
	c, err := connect(fmt.Sprintf("gardenctl-%d", time.Now().UnixNano()))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer c.Disconnect(250)

	token := c.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}

func buildWaterCommand() *cobra.Command {
	var zone int
	var durationMs int
	var id, zoneID string

	cmd := &cobra.Command{
		Use:   "water",
		Short: "Publish a water command for one zone",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]any{
				"position": zone,
				"duration": durationMs,
				"id":       id,
				"zone_id":  zoneID,
			})
			if err != nil {
				return err
			}
			return publishOnce(prefix+"/command/water", payload)
		},
	}
	cmd.Flags().IntVar(&zone, "zone", 0, "zone index")
	cmd.Flags().IntVar(&durationMs, "duration", 0, "pulse duration in ms (0 = controller default)")
	cmd.Flags().StringVar(&id, "id", "gardenctl", "request id echoed in telemetry")
	cmd.Flags().StringVar(&zoneID, "zone-id", "N/A", "zone id echoed in telemetry")
	return cmd
}

func buildStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Cancel the currently pulsing zone, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			return publishOnce(prefix+"/command/stop", nil)
		},
	}
}

func buildStopAllCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop-all",
		Short: "Cancel the pulsing zone and drain every queued request",
		RunE: func(cmd *cobra.Command, args []string) error {
			return publishOnce(prefix+"/command/stop_all", nil)
		},
	}
}

func buildLightCommand() *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "light",
		Short: "Toggle, force on, or force off the grow-light",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{"state": state})
			if err != nil {
				return err
			}
			return publishOnce(prefix+"/command/light", payload)
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "on, off, or empty to toggle")
	return cmd
}

func buildConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the controller's configuration document",
	}
	configCmd.AddCommand(buildConfigPushCommand())
	return configCmd
}

func buildConfigPushCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "push FILE",
		Short: "Push a configuration document; the controller reboots on success",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return publishOnce(prefix+"/command/update_config", data)
		},
	}
}

func buildWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print every telemetry line published by the controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := connect(fmt.Sprintf("gardenctl-watch-%d", time.Now().UnixNano()))
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer c.Disconnect(250)

			topic := prefix + "/data/#"
			if token := c.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
				fmt.Printf("%s %s\n", msg.Topic(), msg.Payload())
			}); token.Wait() && token.Error() != nil {
				return token.Error()
			}

			sigc := make(chan os.Signal, 1)
			signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
			<-sigc
			return nil
		},
	}
}
