package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (o *options) vocabCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "Print the effective skill and section vocabularies",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			s := cfg.scorer()
			fmt.Fprintf(o.out, "skills (%d): %s\n", len(s.SkillVocabulary()), strings.Join(s.SkillVocabulary(), ", "))
			fmt.Fprintf(o.out, "sections (%d): %s\n", len(s.SectionVocabulary()), strings.Join(s.SectionVocabulary(), ", "))
			return nil
		},
	}
}
