package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-matcher/internal/filtering"
	"github.com/spigell/vacancy-matcher/internal/logger"
	"github.com/spigell/vacancy-matcher/internal/matching"
)

const (
	PromptShowResult          = "Show a posting"
	PromptReportBySkills      = "Report by missing skills"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"

	outputText = "text"
	outputJSON = "json"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowResult, PromptReportBySkills, PromptResultsToFile, PromptAppendToExcludeFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank the catalog postings against a résumé",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("resume", "r", "", "résumé text file, '-' reads stdin")
	matchCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "print the results and exit without interactive prompts")
	matchCmd.Flags().StringP("exclude-file", "e", "", "file with postings to exclude. Default is unset.")
	matchCmd.Flags().Float64("minimum-score", 0, "drop postings scoring below this value (0-100)")
	matchCmd.Flags().Int("limit", 0, "show only the best N postings, 0 shows all")
	matchCmd.Flags().Bool("ai", false, "ask Gemini for a learning plan for the best postings")

	viper.BindPFlag("filters.exclude-file", matchCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("filters.minimum-score", matchCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("filters.limit", matchCmd.Flags().Lookup("limit"))
	viper.BindPFlag("ai.enabled", matchCmd.Flags().Lookup("ai"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vacancy-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	output := cmd.Flag("output").Value.String()
	if output != outputText && output != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	resume, err := readResume(cmd.Flag("resume").Value.String(), cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading resume", zap.Error(err),
			zap.String("hint", "pass --resume <file> or --resume - to read stdin"),
		)
	}

	engine, err := loadEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal("loading catalog", zap.Error(err))
	}

	results, err := engine.Rank(resume)
	if errors.Is(err, matching.ErrInvalidInput) {
		logger.Fatal("resume text is empty", zap.Error(err))
	}
	if err != nil {
		logger.Fatal("ranking postings", zap.Error(err))
	}

	filters := prepareFilters(config, resume, maybeAdvisor(ctx, config, logger), logger)
	describeFilters(filters, logger)

	results, err = filters.RunFilters(ctx, results)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if output == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			logger.Fatal("encoding results", zap.Error(err))
		}
		return
	}

	if err := printResults(cmd.OutOrStdout(), results); err != nil {
		logger.Fatal("printing results", zap.Error(err))
	}

	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings left after filters"))
		return
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, cmd.OutOrStdout(), logger, config, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, config *Config, results *matching.Results) error {
	switch action {
	case PromptShowResult:
		return showResults(out, results)
	case PromptReportBySkills:
		pretty, _ := json.MarshalIndent(results.ReportByMissingSkill(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", results.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(config.Filters.ExcludeFile, logger, results)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "exit selected"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(path string, logger *zap.Logger, results *matching.Results) error {
	if strings.TrimSpace(path) == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "set --exclude-file or filters.exclude-file"))
		return nil
	}

	excluded, err := filtering.GetExcludedPostingsFromFile(path)
	if err != nil {
		return err
	}

	excluded.Append(filtering.ToExcluded(results))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", results.Len()))
	return nil
}

func showResults(out io.Writer, results *matching.Results) error {
	for {
		items := make([]string, 0, results.Len()+1)
		for _, res := range results.Items {
			items = append(items, fmt.Sprintf("%s %.2f / %s / %s",
				res.Posting.ID, res.Score, res.Posting.Title(), res.Posting.Company(),
			))
		}

		resultPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: append(items, PromptBack),
		}

		_, selected, err := resultPrompt.Run()
		if err != nil {
			return err
		}

		if selected == PromptBack {
			return nil
		}

		id := strings.Split(selected, " ")[0]
		res := results.FindByID(id)
		if res == nil {
			return fmt.Errorf("there is no such posting id %s", id)
		}

		pretty, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(pretty))
	}
}

func printResults(out io.Writer, results *matching.Results) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tTITLE\tMATCHED\tMISSING\tCOURSES")
	for _, res := range results.Items {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\t%d\n",
			res.Posting.ID,
			res.Score,
			res.Posting.Title(),
			strings.Join(res.MatchedSkills, ", "),
			strings.Join(res.MissingSkills, ", "),
			len(res.RecommendedCourses),
		)
	}
	return w.Flush()
}

// readResume reads the résumé from a file, or from stdin when path is "-".
func readResume(path string, stdin io.Reader) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("resume file is required")
	}

	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume file %q: %w", path, err)
	}
	return string(data), nil
}
