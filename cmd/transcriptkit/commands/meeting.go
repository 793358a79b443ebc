package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/transcriptkit/meeting"
	"github.com/kbukum/transcriptkit/transcript"
)

// withRuntime runs fn with a runtime that is closed afterwards.
func withRuntime(cmd *cobra.Command, opts *globalOptions, fn func(rt *runtime) error) error {
	rt, err := newRuntime(cmd.Context(), opts.cfg)
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(rt)
}

func newMeetingCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting",
		Short: "Manage meeting recordings",
		Long: `Manage meeting recordings.

A meeting starts in recording, may be paused and resumed, and is processed
after it stops. Processing runs the configured engines and stores the
speaker-aligned transcript.

Lifecycle:
  recording <-> paused -> processing -> completed | error
  recording, paused, processing -> cancelled
  error -> processing (reprocess)`,
	}

	cmd.AddCommand(
		newMeetingMigrateCmd(opts),
		newMeetingCreateCmd(opts),
		newMeetingTransitionCmd(opts, "pause", "Pause a recording meeting", (*meeting.Service).Pause),
		newMeetingTransitionCmd(opts, "resume", "Resume a paused meeting", (*meeting.Service).Resume),
		newMeetingTransitionCmd(opts, "cancel", "Cancel a meeting", (*meeting.Service).Cancel),
		newMeetingStopCmd(opts),
		newMeetingProcessCmd(opts),
		newMeetingListCmd(opts),
		newMeetingShowCmd(opts),
		newMeetingTranscriptCmd(opts),
	)
	return cmd
}

func newMeetingMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				if err := rt.db.Migrate(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return err
			})
		},
	}
}

func newMeetingCreateCmd(opts *globalOptions) *cobra.Command {
	var req meeting.CreateRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start a new meeting recording",
		Long: `Start a new meeting recording.

Examples:
  transcriptkit meeting create --title "Weekly sync" --language en
  transcriptkit meeting create --profile noisy_meeting --min-speakers 2 --max-speakers 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				m, err := rt.service.Create(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "meeting title (default: start time)")
	cmd.Flags().StringVar(&req.Language, "language", "", "spoken language code")
	cmd.Flags().StringVar(&req.AudioPath, "audio", "", "audio file being recorded")
	cmd.Flags().StringVar(&req.Profile, "profile", "", "diarization profile")
	cmd.Flags().IntVar(&req.MinSpeakers, "min-speakers", 0, "minimum expected speakers")
	cmd.Flags().IntVar(&req.MaxSpeakers, "max-speakers", 0, "maximum expected speakers")
	cmd.Flags().BoolVar(&req.SkipDiarization, "skip-diarization", false, "transcribe without speakers")
	return cmd
}

type transitionFunc func(*meeting.Service, context.Context, string) (*meeting.Meeting, error)

func newMeetingTransitionCmd(opts *globalOptions, use, short string, fn transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <meeting_id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				m, err := fn(rt.service, cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}
}

func newMeetingStopCmd(opts *globalOptions) *cobra.Command {
	var (
		rec       meeting.Recording
		noProcess bool
	)

	cmd := &cobra.Command{
		Use:   "stop <meeting_id>",
		Short: "Stop a recording and process it",
		Long: `Stop a recording and process it.

The meeting moves to processing and, unless --no-process is given, the
engines run immediately and the summary is printed. Stopping a meeting in
the error state reprocesses it.

Examples:
  transcriptkit meeting stop 3f2c... --audio /data/sync.wav --duration 1820.5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				m, err := rt.service.Stop(cmd.Context(), args[0], rec)
				if err != nil {
					return err
				}
				if noProcess {
					return printJSON(cmd.OutOrStdout(), m)
				}
				return process(cmd, rt, m.ID)
			})
		},
	}

	cmd.Flags().StringVar(&rec.AudioPath, "audio", "", "finalized audio file")
	cmd.Flags().Float64Var(&rec.Duration, "duration", 0, "audio duration in seconds")
	cmd.Flags().BoolVar(&noProcess, "no-process", false, "only mark the meeting for processing")
	return cmd
}

func newMeetingProcessCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process <meeting_id>",
		Short: "Process a meeting that is waiting in processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				return process(cmd, rt, args[0])
			})
		},
	}
}

func process(cmd *cobra.Command, rt *runtime, id string) error {
	p, err := rt.processor()
	if err != nil {
		return err
	}
	res, err := p.Process(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res.Summary())
}

func newMeetingListCmd(opts *globalOptions) *cobra.Command {
	var (
		status string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List meetings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := meeting.Status(status)
			if status != "" && !st.Valid() {
				return fmt.Errorf("unknown status %q", status)
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				meetings, err := rt.service.List(cmd.Context(), st, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), meetings)
				}
				return printMeetings(cmd.OutOrStdout(), meetings)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only meetings in this status")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of meetings (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printMeetings(w io.Writer, meetings []*meeting.Meeting) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCREATED")
	for _, m := range meetings {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Status, m.Title, m.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func newMeetingShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <meeting_id>",
		Short: "Show one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				m, err := rt.service.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}
}

func newMeetingTranscriptCmd(opts *globalOptions) *cobra.Command {
	var (
		format  string
		output  string
		speaker string
	)

	cmd := &cobra.Command{
		Use:   "transcript <meeting_id>",
		Short: "Render the stored transcript of a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := transcript.ParseFormat(format)
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(rt *runtime) error {
				m, err := rt.service.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				res, err := rt.service.Transcript(cmd.Context(), m.ID)
				if err != nil {
					return err
				}
				if res, err = forSpeaker(res, speaker); err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
					return transcript.Render(w, res, f, transcript.RenderOptions{Title: m.Title, MeetingID: m.ID})
				})
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(transcript.FormatText), "output format: text, srt, vtt, markdown, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&speaker, "speaker", "", `only render one speaker ("SPEAKER_01" or "Speaker 2")`)
	return cmd
}
