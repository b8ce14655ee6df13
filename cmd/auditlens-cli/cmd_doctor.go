package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		Long:  "Run diagnostic checks against config, server liveness, and readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(ctx context.Context) error {
	fmt.Println("\nauditlens doctor")
	fmt.Println("================")

	results := doctorChecks(ctx)

	fmt.Println()
	allPassed := true
	for _, r := range results {
		mark := "✅"
		if !r.Passed {
			mark = "❌"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Printf("%s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("%s %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Printf("   Hint: %s\n", r.Hint)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("❌ Some checks failed.")
		return fmt.Errorf("doctor found issues")
	}
	fmt.Println("✅ All checks passed!")
	return nil
}

func doctorChecks(ctx context.Context) []checkResult {
	var results []checkResult

	// Missing config is informational; flags and env may be enough.
	path, _, err := loadConfigFile()
	if err != nil {
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: "not found, using flags and env"})
	} else {
		results = append(results, checkResult{Name: "Config file", Passed: true, Detail: fmt.Sprintf("found (%s)", path)})
	}

	results = append(results, checkResult{Name: "Server URL", Passed: true, Detail: flagURL})

	if flagActorID == "" {
		results = append(results, checkResult{
			Name: "Actor", Passed: false,
			Hint: "Exports are attributed to an actor. Set --actor-id, AUDITLENS_ACTOR_ID, or run auditlens init --id",
		})
	} else {
		results = append(results, checkResult{Name: "Actor", Passed: true, Detail: flagActorID})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health, err := apiClient.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Passed: false, Detail: flagURL,
			Hint: fmt.Sprintf("Is the auditlens server running?\n   Error: %v", err),
		})
	}
	results = append(results, checkResult{Name: "Server reachable", Passed: true, Detail: "v" + health.Version})

	ready, err := apiClient.Ready(ctx)
	if err != nil {
		return append(results, checkResult{Name: "Server ready", Passed: false, Hint: err.Error()})
	}

	names := make([]string, 0, len(ready.Checks))
	for name := range ready.Checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := ready.Checks[name]
		results = append(results, checkResult{
			Name: "Dependency " + name, Passed: status == "ok", Detail: status,
		})
	}

	return results
}
