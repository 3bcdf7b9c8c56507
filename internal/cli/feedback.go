package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/ingest"
)

type feedbackLine struct {
	Text      string `json:"text"`
	ID        string `json:"id,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

func newFeedbackCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "feedback [text...]",
		Short: "Classify feedback, draft replies and store the results",
		Long:  "Classify each piece of feedback, draft a reply and store the result. Texts come from arguments, or one per line from --file (\"-\" for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if file != "" {
				lines, err := readLines(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				texts = append(texts, lines...)
			}
			if len(texts) == 0 {
				return apperrors.InvalidInput("no feedback given")
			}

			settings := opts.settings
			if err := validated(settings); err != nil {
				return err
			}

			a, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.withIngest(settings); err != nil {
				return err
			}

			report, err := a.ingest.Ingest(cmd.Context(), texts)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), opts, texts, report)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read feedback from a file, one per line")
	return cmd
}

func readLines(stdin io.Reader, path string) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading feedback: %w", err)
	}
	return lines, nil
}

func printReport(w io.Writer, opts *rootOptions, texts []string, report ingest.Report) error {
	lines := make([]feedbackLine, len(texts))
	for i, res := range report.Results {
		lines[i] = feedbackLine{Text: texts[i]}
		if res.Record != nil {
			lines[i].ID = res.Record.ID
			lines[i].Sentiment = res.Record.Sentiment.String()
			lines[i].Reply = res.Record.Reply
		}
		if res.Err != nil {
			lines[i].Error = res.Err.Error()
		}
	}

	if opts.isJSON() {
		return printJSON(w, lines)
	}

	for _, l := range lines {
		fmt.Fprintf(w, "Feedback:  %s\n", l.Text)
		if l.Sentiment != "" {
			fmt.Fprintf(w, "Sentiment: %s\n", l.Sentiment)
		}
		if l.Reply != "" {
			fmt.Fprintf(w, "Reply:     %s\n", l.Reply)
		}
		if l.Error != "" {
			fmt.Fprintf(w, "Error:     %s\n", l.Error)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "stored %d, duplicates %d, failed %d\n", report.Stored, report.Duplicates, report.Failed)
	return nil
}
