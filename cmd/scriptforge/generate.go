package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/scriptforge/internal/config"
	scriptforge "github.com/kailas-cloud/scriptforge/pkg/sdk"
)

func generateCmd() *cobra.Command {
	var prompt, outputType string
	var offline bool

	var generate = &cobra.Command{
		Use:   "generate",
		Short: "Generate one scene or outline and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.GetEnv())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			opts := []scriptforge.Option{
				scriptforge.WithCorpusDirs(cfg.Corpus.Dirs...),
				scriptforge.WithTopN(cfg.Corpus.TopN),
				scriptforge.WithExcerptChars(cfg.Corpus.ExcerptChars),
				scriptforge.WithTemperature(cfg.LLM.Temperature),
			}
			if !offline && cfg.LLM.Configured() {
				opts = append(opts,
					scriptforge.WithOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model),
					scriptforge.WithRequestTimeout(time.Duration(cfg.LLM.TimeoutSec)*time.Second),
				)
			}

			client, err := scriptforge.New(opts...)
			if err != nil {
				return err
			}

			g, err := client.Generate(cmd.Context(), prompt, scriptforge.OutputType(outputType))
			if err != nil {
				return err
			}
			if !g.FromModel {
				fmt.Fprintf(cmd.ErrOrStderr(), "fallback content (%s)\n", g.FallbackReason)
			}
			fmt.Fprintln(cmd.OutOrStdout(), g.Content)
			return nil
		},
	}
	generate.Flags().StringVarP(&prompt, "prompt", "p", "", "what the scene or outline is about")
	generate.Flags().StringVarP(&outputType, "type", "t", "script", "script or outline")
	generate.Flags().BoolVar(&offline, "offline", false, "skip the language model and use fallback content")
	_ = generate.MarkFlagRequired("prompt")

	return generate
}
