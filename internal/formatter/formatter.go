// package formatter exports job reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/t-murch/radio-wash-sub000/internal/models"
)

// MappingsToCSV converts a job's track mappings to CSV with columns:
// Position, Source ID, Source Track, Source Artist, Explicit, Matched, Clean ID, Clean Track
func MappingsToCSV(mappings []*models.TrackMapping) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Source ID", "Source Track", "Source Artist", "Explicit", "Matched", "Clean ID", "Clean Track"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range mappings {
		record := []string{
			strconv.Itoa(m.Position()),
			m.SourceTrackID(),
			m.SourceTrackName(),
			m.SourceArtist(),
			strconv.FormatBool(m.Explicit()),
			strconv.FormatBool(m.HasCleanMatch()),
			m.TargetTrackID(),
			m.TargetTrackName(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// JobToMarkdown renders a job report: summary header plus a per-track list
// showing each substitution and every track that stayed unmatched.
func JobToMarkdown(job *models.CleanJob, mappings []*models.TrackMapping) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", job.TargetPlaylistName()))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", job.SourcePlaylistName()))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", job.Status()))
	buf.WriteString(fmt.Sprintf("**Matched**: %d of %d tracks\n\n", job.MatchedTracks(), job.TotalTracks()))

	if job.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("**Error**: %s\n\n", job.ErrorMessage()))
	}

	buf.WriteString("## Tracks\n\n")
	for _, m := range mappings {
		if m.HasCleanMatch() {
			if m.TargetTrackID() == m.SourceTrackID() {
				buf.WriteString(fmt.Sprintf("%d. %s - %s (already clean)\n", m.Position()+1, m.SourceArtist(), m.SourceTrackName()))
			} else {
				buf.WriteString(fmt.Sprintf("%d. %s - %s -> %s - %s\n", m.Position()+1, m.SourceArtist(), m.SourceTrackName(), m.TargetArtist(), m.TargetTrackName()))
			}
		} else {
			buf.WriteString(fmt.Sprintf("%d. %s - %s (no clean version found)\n", m.Position()+1, m.SourceArtist(), m.SourceTrackName()))
		}
	}

	return buf.Bytes(), nil
}

// JobToText renders a compact plain-text job summary.
func JobToText(job *models.CleanJob) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Job: %s\n", job.ID()))
	buf.WriteString(fmt.Sprintf("Playlist: %s\n", job.SourcePlaylistName()))
	buf.WriteString(fmt.Sprintf("Status: %s\n", job.Status()))
	buf.WriteString(fmt.Sprintf("Matched: %d/%d\n", job.MatchedTracks(), job.TotalTracks()))
	if job.ErrorMessage() != "" {
		buf.WriteString(fmt.Sprintf("Error: %s\n", job.ErrorMessage()))
	}

	return buf.Bytes()
}

// HistoryToText renders sync history rows as aligned plain text, newest first.
func HistoryToText(histories []*models.SyncHistory) []byte {
	var buf bytes.Buffer

	for _, h := range histories {
		buf.WriteString(fmt.Sprintf("%s  %-9s  +%d -%d =%d  %s\n",
			h.StartedAt().Format("2006-01-02 15:04"),
			h.Status(),
			h.TracksAdded(),
			h.TracksRemoved(),
			h.TracksUnchanged(),
			h.Duration().Round(time.Millisecond),
		))
		if h.ErrorMessage() != "" {
			buf.WriteString(fmt.Sprintf("    error: %s\n", h.ErrorMessage()))
		}
	}

	return buf.Bytes()
}

// WriteJobReport writes a job's CSV mapping table and Markdown report.
//
// Defaults to the job ID as the base filename and creates {base}_mappings.csv
// and {base}_report.md.
func WriteJobReport(job *models.CleanJob, mappings []*models.TrackMapping, baseFilepath string) ([]string, error) {
	if baseFilepath == "" {
		baseFilepath = job.ID()
	}

	csvData, err := MappingsToCSV(mappings)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	csvFile := baseFilepath + "_mappings.csv"
	if err := os.WriteFile(csvFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	mdData, err := JobToMarkdown(job, mappings)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := baseFilepath + "_report.md"
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return []string{csvFile, mdFile}, nil
}
