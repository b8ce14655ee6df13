package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitCmd() *cobra.Command {
	var p profileConfig

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write CLI configuration",
		Long:  "Creates ~/.auditlens/config.yaml with a default profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.URL == "" {
				p.URL = defaultURL
			}
			path, err := writeConfig(p)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("Config saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.URL, "server", "", "Server URL")
	cmd.Flags().StringVar(&p.ActorID, "id", "", "Actor ID")
	cmd.Flags().StringVar(&p.ActorName, "name", "", "Actor display name")
	cmd.Flags().StringVar(&p.ActorRole, "role", "", "Actor role")
	return cmd
}

func writeConfig(p profileConfig) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(configFile{
		Profiles:      map[string]profileConfig{"default": p},
		ActiveProfile: "default",
	})
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
