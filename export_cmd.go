package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/model"
)

func exportCmd() *cobra.Command {
	var (
		mode     string
		criteria string
		ids      []string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a genotype search to an xlsx file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := model.ParseMode(mode)
			if err != nil {
				return err
			}
			c, err := readCriteria(criteria)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.geno.Close()
			defer logger.Sync()

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := a.exporter.Render(ctx, f, m, c, ids); err != nil {
				f.Close()
				os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			logger.Info("Export written", zap.String("file", out), zap.Stringer("mode", m))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "range", "search mode: range, snp or locus")
	cmd.Flags().StringVar(&criteria, "criteria", "", "JSON file holding the search criteria")
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "export only these variety ids")
	cmd.Flags().StringVarP(&out, "out", "o", "genotype.xlsx", "output file")
	_ = cmd.MarkFlagRequired("criteria")
	return cmd
}

func readCriteria(path string) (model.SearchCriteria, error) {
	var c model.SearchCriteria
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read criteria: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: decode %s: %v", model.ErrInvalidCriteria, path, err)
	}
	return c, nil
}
