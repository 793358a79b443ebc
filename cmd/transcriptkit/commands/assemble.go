package commands

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/transcriptkit/ingest"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/transcript"
)

func newAssembleCmd(opts *globalOptions) *cobra.Command {
	var (
		format          string
		output          string
		title           string
		speaker         string
		skipDiarization bool
	)

	cmd := &cobra.Command{
		Use:   "assemble [file]",
		Short: "Assemble a transcript from raw engine output",
		Long: `Assemble a speaker-aligned transcript from a JSON document.

Accepted documents:
  {"chunks": [...], "intervals": [...]}   timed texts and speaker intervals in seconds
  {"utterances": [...]}                   vendor utterances with speakers
  {"words": [...]}                        vendor word lists with speakers

Reads stdin when no file or "-" is given.

Examples:
  transcriptkit assemble raw.json --format srt -o meeting.srt
  cat raw.json | transcriptkit assemble --format markdown --title "Weekly sync"
  transcriptkit assemble raw.json --speaker "Speaker 2"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transcript.ParseFormat(format)
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			in, err := openInput(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			batch, err := ingest.Decode(in)
			_ = in.Close()
			if err != nil {
				return err
			}

			input := batch.Input()
			input.SkipDiarization = skipDiarization
			res, err := transcript.Assemble(cmd.Context(), input, opts.cfg.Assembly)
			if err != nil {
				return err
			}
			res.Stats.MalformedIntervals += batch.Dropped

			summary := res.Summary()
			logger.Get("assemble").Info("transcript assembled", logger.Fields(
				"source", batch.Source,
				"segments", summary.Segments,
				"speakers", summary.Speakers,
				logger.FieldDropped, summary.Dropped,
			))

			res, err = forSpeaker(res, speaker)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return transcript.Render(w, res, f, transcript.RenderOptions{Title: title})
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(transcript.FormatText), "output format: text, srt, vtt, markdown, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&title, "title", "", "title for markdown output")
	cmd.Flags().StringVar(&speaker, "speaker", "", `only render one speaker ("SPEAKER_01" or "Speaker 2")`)
	cmd.Flags().BoolVar(&skipDiarization, "skip-diarization", false, "ignore speaker information")
	return cmd
}
