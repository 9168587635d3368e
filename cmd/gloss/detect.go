package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/gloss/internal/langdetect"
)

var detectJSON bool

// detectCmd reports the detected language of a text.
var detectCmd = &cobra.Command{
	Use:   "detect [text|-]",
	Short: "Detect the language of a text",
	Long: `Detect the language of a text from its script and a few lexical hints.
Prints the tag, its confidence and up to two runner-up candidates. Text that
is too short or too mixed is reported as "auto".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _, err := readText(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return exitError(ExitInvalidArgs, "no text to detect")
		}

		res := langdetect.Detect(text)
		w := cmd.OutOrStdout()
		if detectJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%d%%\n", res.Language, langdetect.Name(res.Language), res.Confidence)
		for _, alt := range res.Alternatives {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%d%%\n", alt.Language, langdetect.Name(alt.Language), alt.Confidence)
		}
		return nil
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "print scores and alternatives as JSON")
}

// parseLanguage validates a --language value. Empty means detect.
func parseLanguage(s string) (langdetect.Tag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	tag := langdetect.Tag(s)
	if !langdetect.Valid(tag) {
		known := make([]string, 0, len(langdetect.Tags())+1)
		for _, t := range langdetect.Tags() {
			known = append(known, string(t))
		}
		known = append(known, string(langdetect.TagAuto))
		return "", exitError(ExitInvalidArgs, "unknown language %q (known: %s)", s, strings.Join(known, ", "))
	}
	return tag, nil
}
