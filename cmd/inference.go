package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"revizly/internal/server"
)

var inferenceCmd = &cobra.Command{
	Use:   "inference",
	Short: "Start the inference service",
	Long:  `Start the POST /generate endpoint backed by the configured chat model (or the mock generator when no API key is set).`,
	RunE:  runInference,
}

func init() {
	rootCmd.AddCommand(inferenceCmd)

	flags := inferenceCmd.Flags()

	flags.StringP("host", "H", "0.0.0.0", "inference host")
	flags.IntP("port", "p", 5000, "inference port")

	// AI flags
	flags.String("ai-provider", "openai", "AI provider (openai/azure/ark/mock)")
	flags.String("ai-model", "", "AI model name")
	flags.String("ai-api-key", "", "AI API key (recommend using env: REVIZLY_AI_API_KEY)")

	_ = viper.BindPFlag("inference.host", flags.Lookup("host"))
	_ = viper.BindPFlag("inference.port", flags.Lookup("port"))
	_ = viper.BindPFlag("ai.provider", flags.Lookup("ai-provider"))
	_ = viper.BindPFlag("ai.model", flags.Lookup("ai-model"))
	_ = viper.BindPFlag("ai.api_key", flags.Lookup("ai-api-key"))
}

func runInference(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	srv, err := server.NewInference(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create inference server: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Inference.Host, cfg.Inference.Port)
	log.Info().
		Str("addr", addr).
		Str("provider", cfg.AI.Provider).
		Msg("starting inference service")

	return srv.Run(ctx, addr)
}
