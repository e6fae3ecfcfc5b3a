package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change pipeline settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a setting and persists it to the config file.

Keys: chunk_size, chunk_overlap, top_k, min_score, history_turns,
base_url, embedding_model, generation_model, temperature, top_p,
request_timeout, max_retries, max_concurrent_requests.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	s, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Printf("chunk_size              = %d\n", s.ChunkSize)
	cmd.Printf("chunk_overlap           = %d\n", s.ChunkOverlap)
	cmd.Printf("top_k                   = %d\n", s.TopK)
	cmd.Printf("overfetch_factor        = %d\n", s.OverfetchFactor)
	cmd.Printf("min_score               = %g\n", s.MinScore)
	cmd.Printf("history_turns           = %d\n", s.HistoryTurns)
	cmd.Printf("base_url                = %s\n", s.BaseURL)
	cmd.Printf("embedding_model         = %s\n", s.EmbeddingModel)
	cmd.Printf("generation_model        = %s\n", s.GenerationModel)
	cmd.Printf("temperature             = %g\n", s.Temperature)
	cmd.Printf("top_p                   = %g\n", s.TopP)
	cmd.Printf("request_timeout         = %s\n", s.RequestTimeout)
	cmd.Printf("max_retries             = %d\n", s.MaxRetries)
	cmd.Printf("retry_base_delay        = %s\n", s.RetryBaseDelay)
	cmd.Printf("breaker_threshold       = %d\n", s.BreakerThreshold)
	cmd.Printf("breaker_cooldown        = %s\n", s.BreakerCooldown)
	cmd.Printf("max_concurrent_requests = %d\n", s.MaxConcurrentRequests)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	s, err := settingsStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	key, value := args[0], args[1]
	switch key {
	case "chunk_size":
		s.ChunkSize, err = strconv.Atoi(value)
	case "chunk_overlap":
		s.ChunkOverlap, err = strconv.Atoi(value)
	case "top_k":
		s.TopK, err = strconv.Atoi(value)
	case "overfetch_factor":
		s.OverfetchFactor, err = strconv.Atoi(value)
	case "min_score":
		s.MinScore, err = strconv.ParseFloat(value, 64)
	case "history_turns":
		s.HistoryTurns, err = strconv.Atoi(value)
	case "base_url":
		s.BaseURL = value
	case "embedding_model":
		s.EmbeddingModel = value
	case "generation_model":
		s.GenerationModel = value
	case "temperature":
		s.Temperature, err = strconv.ParseFloat(value, 64)
	case "top_p":
		s.TopP, err = strconv.ParseFloat(value, 64)
	case "request_timeout":
		s.RequestTimeout, err = time.ParseDuration(value)
	case "max_retries":
		s.MaxRetries, err = strconv.Atoi(value)
	case "retry_base_delay":
		s.RetryBaseDelay, err = time.ParseDuration(value)
	case "breaker_threshold":
		s.BreakerThreshold, err = strconv.Atoi(value)
	case "breaker_cooldown":
		s.BreakerCooldown, err = time.ParseDuration(value)
	case "max_concurrent_requests":
		s.MaxConcurrentRequests, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := settingsStore.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}
