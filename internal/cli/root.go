// Package cli is the screener command line: rank local or S3 résumés
// against a job description without running the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/scoring"
	"alfredoptarigan/resume-screener/internal/services"
)

const (
	app       = "screener"
	envPrefix = "SCREENER"
)

type Config struct {
	Skills       []string `mapstructure:"skills"`
	Sections     []string `mapstructure:"sections"`
	PhraseSkills bool     `mapstructure:"phrase-skills"`
	RawBullets   bool     `mapstructure:"raw-bullets"`
	MaxFileSize  int64    `mapstructure:"max-file-size"`
	S3           S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
}

type options struct {
	cfgFile string
	v       *viper.Viper
	out     io.Writer

	newLogger func(json, debug bool) (*zap.Logger, error)
	newSource func(cfg *Config) services.DocumentSource
}

// Execute runs the screener command against os.Args.
func Execute() error {
	return NewRootCommand(os.Stdout).Execute()
}

// NewRootCommand builds the command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	o := &options{
		v:   viper.New(),
		out: out,
		newLogger: func(json, debug bool) (*zap.Logger, error) {
			return logger.NewWithOutput(json, debug, "stderr")
		},
		newSource: defaultSource,
	}
	return o.rootCommand()
}

func (o *options) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          app,
		Short:        "screener ranks resumes against a job description",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return o.initConfig()
		},
	}
	root.SetOut(o.out)

	root.PersistentFlags().StringVar(&o.cfgFile, "config", "", "a config file (default is screener.yaml in current directory)")
	root.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	root.PersistentFlags().Bool("log-json", false, "json format for logging")

	o.v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	o.v.BindPFlag("log-json", root.PersistentFlags().Lookup("log-json"))

	root.AddCommand(o.rankCommand(), o.vocabCommand(), o.versionCommand())
	return root
}

func (o *options) initConfig() error {
	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	o.v.AutomaticEnv()

	o.v.SetDefault("skills", scoring.DefaultSkillVocabulary())
	o.v.SetDefault("sections", scoring.DefaultSectionVocabulary())
	o.v.SetDefault("phrase-skills", false)
	o.v.SetDefault("raw-bullets", false)
	o.v.SetDefault("max-file-size", 10485760)
	o.v.SetDefault("s3.endpoint", "")
	o.v.SetDefault("s3.region", "auto")
	o.v.SetDefault("s3.access-key", "")
	o.v.SetDefault("s3.secret-key", "")

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", o.cfgFile, err)
		}
		return nil
	}

	o.v.AddConfigPath(".")
	o.v.SetConfigName(app)
	o.v.SetConfigType("yaml")

	// The default config file is optional.
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func (o *options) config() (*Config, error) {
	var cfg Config
	if err := o.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func (o *options) logger() (*zap.Logger, error) {
	return o.newLogger(o.v.GetBool("log-json"), o.v.GetBool("debug"))
}

func (c *Config) scorer() *scoring.Scorer {
	return scoring.NewScorer(c.Skills, c.Sections, scoring.Options{
		PhraseSkillMatching: c.PhraseSkills,
		CountRawBullets:     c.RawBullets,
	})
}

func defaultSource(cfg *Config) services.DocumentSource {
	s3cfg := services.S3Config(cfg.S3)
	return &services.MultiSource{
		Files: services.NewFileDocumentSource(),
		S3: func(ctx context.Context) (services.DocumentSource, error) {
			return services.NewS3DocumentSource(ctx, s3cfg, cfg.MaxFileSize)
		},
	}
}
