package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/auditlens/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.3.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3040"

var (
	apiClient     *client.Client
	flagURL       string
	flagActorID   string
	flagActorName string
	flagActorRole string
	flagFmt       string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("auditlens version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("auditlens version %s-dev", version)
}

// profileConfig holds connection settings for a single profile.
type profileConfig struct {
	URL       string `yaml:"url,omitempty"`
	ActorID   string `yaml:"actor_id,omitempty"`
	ActorName string `yaml:"actor_name,omitempty"`
	ActorRole string `yaml:"actor_role,omitempty"`
}

// configFile is ~/.auditlens/config.yaml. The flat fields are read when no
// profile matches.
type configFile struct {
	profileConfig `yaml:",inline"`
	Profiles      map[string]profileConfig `yaml:"profiles,omitempty"`
	ActiveProfile string                   `yaml:"active_profile,omitempty"`
}

// active returns the selected profile merged over the flat settings.
func (f *configFile) active() profileConfig {
	p := f.profileConfig
	name := f.ActiveProfile
	if name == "" {
		name = "default"
	}
	if prof, ok := f.Profiles[name]; ok {
		if prof.URL != "" {
			p.URL = prof.URL
		}
		if prof.ActorID != "" {
			p.ActorID = prof.ActorID
		}
		if prof.ActorName != "" {
			p.ActorName = prof.ActorName
		}
		if prof.ActorRole != "" {
			p.ActorRole = prof.ActorRole
		}
	}
	return p
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "auditlens",
		Short:   "auditlens CLI: dashboards, search and export over activity logs",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL, client.WithActor(client.Actor{
				ID:   flagActorID,
				Name: flagActorName,
				Role: flagActorRole,
			}))
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	addGlobalFlags(rootCmd)

	initCmd := newInitCmd()
	initCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {} // skip client setup

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newExportCmd())
	return rootCmd
}

func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "auditlens server URL (env: AUDITLENS_URL)")
	cmd.PersistentFlags().StringVar(&flagActorID, "actor-id", "", "Actor ID sent with requests (env: AUDITLENS_ACTOR_ID)")
	cmd.PersistentFlags().StringVar(&flagActorName, "actor-name", "", "Actor display name")
	cmd.PersistentFlags().StringVar(&flagActorRole, "actor-role", "", "Actor role")
	cmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".auditlens", "config.yaml"), nil
}

func loadConfigFile() (string, *configFile, error) {
	path, err := configPath()
	if err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return path, nil, err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return path, nil, err
	}
	return path, &cfg, nil
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultURL {
		if v := os.Getenv("AUDITLENS_URL"); v != "" {
			flagURL = v
		}
	}
	if flagActorID == "" {
		flagActorID = os.Getenv("AUDITLENS_ACTOR_ID")
	}

	_, cfg, err := loadConfigFile()
	if err != nil {
		return
	}
	p := cfg.active()

	if flagURL == defaultURL && p.URL != "" {
		flagURL = p.URL
	}
	if flagActorID == "" {
		flagActorID = p.ActorID
	}
	if flagActorName == "" {
		flagActorName = p.ActorName
	}
	if flagActorRole == "" {
		flagActorRole = p.ActorRole
	}
}
