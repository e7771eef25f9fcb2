package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/scoring"
	"alfredoptarigan/resume-screener/internal/services"
)

type rankFlags struct {
	job     string
	jobFile string
	asJSON  bool
}

func (o *options) rankCommand() *cobra.Command {
	f := &rankFlags{}

	cmd := &cobra.Command{
		Use:   "rank <file|s3://bucket/key>...",
		Short: "Rank resumes against a job description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.rank(cmd.Context(), f, args)
		},
	}

	cmd.Flags().StringVar(&f.job, "job", "", "job description text")
	cmd.Flags().StringVar(&f.jobFile, "job-file", "", "file holding the job description")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full analysis as JSON")
	cmd.Flags().Bool("phrase-skills", false, "match multi-word skills against consecutive words")
	cmd.Flags().Bool("raw-bullets", false, "count bullet characters before normalization")

	cmd.MarkFlagsOneRequired("job", "job-file")
	cmd.MarkFlagsMutuallyExclusive("job", "job-file")

	o.v.BindPFlag("phrase-skills", cmd.Flags().Lookup("phrase-skills"))
	o.v.BindPFlag("raw-bullets", cmd.Flags().Lookup("raw-bullets"))

	return cmd
}

func (o *options) rank(ctx context.Context, f *rankFlags, locations []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, err := o.logger()
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg, err := o.config()
	if err != nil {
		return err
	}

	job := f.job
	if f.jobFile != "" {
		data, err := os.ReadFile(f.jobFile)
		if err != nil {
			return fmt.Errorf("reading job description: %w", err)
		}
		job = string(data)
	}
	if strings.TrimSpace(job) == "" {
		return services.ErrMissingJobDescription
	}

	source := o.newSource(cfg)
	docs := make([]services.UploadedDocument, 0, len(locations))
	for _, location := range locations {
		doc, err := source.Load(ctx, location)
		if err != nil {
			return err
		}
		if err := services.ValidateDocument(doc, cfg.MaxFileSize); err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	log.Info("ranking resumes",
		zap.Int("resumes", len(docs)),
		zap.String("job_description", logger.Preview(job, 80)),
	)

	screening := services.NewScreeningService(services.NewTextExtractor(log), cfg.scorer(), log)
	analysis, err := screening.Analyze(ctx, job, docs, func(done, total int) {
		log.Info("extracted", zap.Int("done", done), zap.Int("total", total))
	})
	if err != nil {
		return err
	}

	if f.asJSON {
		return writeJSON(o.out, analysis)
	}
	return writeTable(o.out, analysis)
}

func writeJSON(w io.Writer, a *scoring.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(models.NewAnalyzeResponse(a))
}

func writeTable(w io.Writer, a *scoring.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tRESUME\tFIT\tATS\tSIMILARITY\tMATCHED SKILLS")
	for i, row := range a.Ranking {
		r := a.Results[row.Index]
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.3f\t%s\n",
			i+1, row.Filename, row.FitScore, row.ATSScore, r.Similarity, joinOrDash(r.MatchedJobSkills))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\njob skills: %s\n", joinOrDash(a.JobSkills))
	for _, r := range a.Results {
		fmt.Fprintf(w, "\n%s\n", r.Filename)
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
