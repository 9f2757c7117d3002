package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/fundaudit/internal/model"
)

var rulesMold string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := initRegistry(cfg)
		if err != nil {
			return err
		}

		type ruleInfo struct {
			Label     string         `json:"label"`
			Name      string         `json:"name"`
			Family    model.RuleType `json:"family"`
			Templates int            `json:"templates"`
		}

		out := map[model.Mold][]ruleInfo{}
		for _, mold := range reg.Molds() {
			if rulesMold != "" && mold != model.Mold(rulesMold) {
				continue
			}
			for _, rule := range reg.Rules(mold) {
				out[mold] = append(out[mold], ruleInfo{
					Label:     rule.Label,
					Name:      rule.Name,
					Family:    rule.RuleType,
					Templates: len(rule.Templates),
				})
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesMold, "mold", "", "only list rules for this mold")
	rootCmd.AddCommand(rulesCmd)
}
