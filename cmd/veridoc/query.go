package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/veridoc/pkg/config"
	"github.com/soundprediction/veridoc/pkg/policy"
	"github.com/soundprediction/veridoc/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [query text]",
	Short: "Run one validated retrieval from the command line",
	Long: `Run the full pipeline for a single query and print the accepted,
redacted documents as JSON. The principal is described by the --username,
--department and --role flags; unknown department/role pairs resolve to
guest access.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var (
	queryUsername   string
	queryDepartment string
	queryRole       string
	queryK          int
	queryFramework  string
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryUsername, "username", "", "Principal username (required)")
	queryCmd.Flags().StringVar(&queryDepartment, "department", "", "Principal department")
	queryCmd.Flags().StringVar(&queryRole, "role", "", "Principal department role")
	queryCmd.Flags().IntVar(&queryK, "k", 0, "Maximum results (0 uses the configured default)")
	queryCmd.Flags().StringVar(&queryFramework, "framework", "", "Compliance framework (hipaa, gdpr, sox, general)")
	queryCmd.MarkFlagRequired("username")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	ctx := context.Background()
	client, err := initializeClient(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	defer client.Close(ctx)

	principal := types.Principal{
		Username:       queryUsername,
		Department:     queryDepartment,
		DepartmentRole: queryRole,
	}

	var result *types.PipelineResult
	if queryFramework != "" {
		result, err = client.RetrieveAndValidateCompliance(ctx, args[0], principal, queryK, policy.Framework(queryFramework))
	} else {
		result, err = client.RetrieveAndValidate(ctx, args[0], principal, queryK)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
