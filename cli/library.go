// ABOUTME: Content library CLI commands for the discovery tour
// ABOUTME: Adds videos and documents, analyses transcripts and generates intents
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harperreed/salesflow/charm"
	"github.com/harperreed/salesflow/library"
	"github.com/harperreed/salesflow/models"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage the discovery tour's videos, documents and intents",
}

var (
	videoInput      library.VideoInput
	videoTranscript string
	videoAnalyze    bool
	pdfInput        library.PDFInput
	exportOutput    string
)

var libraryAddVideoCmd = &cobra.Command{
	Use:   "add-video",
	Short: "Add a video with its timestamped transcript",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			in := videoInput
			if videoTranscript != "" {
				text, err := readInput(cmd.InOrStdin(), videoTranscript)
				if err != nil {
					return err
				}
				in.Transcript = text
			}
			if videoAnalyze && in.Transcript != "" {
				segments, err := svc.AnalyzeTranscript(cmd.Context(), in.Transcript)
				if err != nil {
					return err
				}
				in.AnalyzedSegments = segments
			}
			video, err := svc.AddVideo(in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Video added: %s (ID: %d)\n", video.Title, video.ID)
			fmt.Fprintf(out, "  Segments: %d\n", len(video.Segments))
			if len(video.AnalyzedSegments) > 0 {
				fmt.Fprintf(out, "  Analyzed sections: %d\n", len(video.AnalyzedSegments))
			}
			return nil
		})
	},
}

var libraryAddPDFCmd = &cobra.Command{
	Use:   "add-pdf",
	Short: "Add a document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			pdf, err := svc.AddPDF(pdfInput)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Document added: %s (ID: %d)\n", pdf.Title, pdf.ID)
			return nil
		})
	},
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos and documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			videos, err := svc.Videos()
			if err != nil {
				return err
			}
			pdfs, err := svc.PDFs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(videos) == 0 && len(pdfs) == 0 {
				fmt.Fprintln(out, "Library is empty")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KIND\tID\tTITLE\tTAGS\tURL")
			_, _ = fmt.Fprintln(w, "----\t--\t-----\t----\t---")
			for _, v := range videos {
				_, _ = fmt.Fprintf(w, "video\t%d\t%s\t%s\t%s\n", v.ID, v.Title, joinTags(v.Tags), v.URL)
			}
			for _, p := range pdfs {
				_, _ = fmt.Fprintf(w, "pdf\t%d\t%s\t%s\t%s\n", p.ID, p.Title, joinTags(p.Tags), p.URL)
			}
			return w.Flush()
		})
	},
}

var libraryDeleteVideoCmd = &cobra.Command{
	Use:   "delete-video <id>",
	Short: "Delete a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid video ID: %w", err)
		}
		return withLibrary(func(svc *library.Service) error {
			if err := svc.DeleteVideo(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted video %d\n", id)
			return nil
		})
	},
}

var libraryDeletePDFCmd = &cobra.Command{
	Use:   "delete-pdf <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document ID: %w", err)
		}
		return withLibrary(func(svc *library.Service) error {
			if err := svc.DeletePDF(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted document %d\n", id)
			return nil
		})
	},
}

var libraryAnalyzeCmd = &cobra.Command{
	Use:   "analyze <transcript-file|->",
	Short: "Split a transcript into titled sections with the assistant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		return withLibrary(func(svc *library.Service) error {
			segments, err := svc.AnalyzeTranscript(cmd.Context(), text)
			if err != nil {
				return err
			}
			return writeIndentedJSON(cmd.OutOrStdout(), segments)
		})
	},
}

var libraryIntentsCmd = &cobra.Command{
	Use:   "intents",
	Short: "List the tour's intents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			intents, err := svc.Intents()
			if err != nil {
				return err
			}
			printIntents(cmd.OutOrStdout(), intents)
			return nil
		})
	},
}

var libraryGenerateIntentsCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate intents from the library with the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			intents, err := svc.GenerateIntents(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Generated %d intents\n", len(intents))
			printIntents(cmd.OutOrStdout(), intents)
			return nil
		})
	},
}

var libraryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show library counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			st, err := svc.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s, %d intents\n", st.VideoLabel(), st.PDFLabel(), st.Intents)
			return nil
		})
	},
}

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLibrary(func(svc *library.Service) error {
			bundle, err := svc.Export()
			if err != nil {
				return err
			}
			if exportOutput == "" || exportOutput == "-" {
				return writeIndentedJSON(cmd.OutOrStdout(), bundle)
			}
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			if err := writeIndentedJSON(f, bundle); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d videos, %d documents and %d intents to %s\n",
				len(bundle.Videos), len(bundle.PDFs), len(bundle.Intents), exportOutput)
			return nil
		})
	},
}

var libraryImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import a library export, replacing the lists it contains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		var bundle library.Bundle
		if err := json.Unmarshal([]byte(text), &bundle); err != nil {
			return fmt.Errorf("invalid export file: %w", err)
		}
		return withLibrary(func(svc *library.Service) error {
			if err := svc.Import(bundle); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Library imported")
			return nil
		})
	},
}

func printIntents(out io.Writer, intents []models.Intent) {
	if len(intents) == 0 {
		fmt.Fprintln(out, "No intents yet")
		return
	}
	for i, in := range intents {
		fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, in.Title, in.Description)
	}
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readInput reads a file, or stdin when path is "-".
func readInput(stdin io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func withLibrary(fn func(*library.Service) error) error {
	c, err := openLibrary()
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(library.NewService(c, newGateway(), nil, logger))
}

// withCharm opens the library store for sync commands.
func withCharm(fn func(*charm.Client) error) error {
	c, err := openLibrary()
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func init() {
	f := libraryAddVideoCmd.Flags()
	f.StringVar(&videoInput.URL, "url", "", "video URL (required)")
	f.StringVar(&videoInput.Title, "title", "", "video title (required)")
	f.StringVar(&videoInput.Tags, "tags", "", "comma-separated tags")
	f.StringVar(&videoTranscript, "transcript", "", "transcript file, or - for stdin (required)")
	f.BoolVar(&videoAnalyze, "analyze", false, "split the transcript into sections with the assistant")

	f = libraryAddPDFCmd.Flags()
	f.StringVar(&pdfInput.URL, "url", "", "document URL (required)")
	f.StringVar(&pdfInput.Title, "title", "", "document title (required)")
	f.StringVar(&pdfInput.Type, "type", "", "document type, such as case study or whitepaper")
	f.StringVar(&pdfInput.Topics, "topics", "", "topics the document covers")
	f.StringVar(&pdfInput.Tags, "tags", "", "comma-separated tags")

	libraryExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")

	libraryIntentsCmd.AddCommand(libraryGenerateIntentsCmd)
	libraryCmd.AddCommand(
		libraryAddVideoCmd,
		libraryAddPDFCmd,
		libraryListCmd,
		libraryDeleteVideoCmd,
		libraryDeletePDFCmd,
		libraryAnalyzeCmd,
		libraryIntentsCmd,
		libraryStatsCmd,
		libraryExportCmd,
		libraryImportCmd,
	)
	rootCmd.AddCommand(libraryCmd)
}
