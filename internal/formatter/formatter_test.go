package formatter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/t-murch/radio-wash-sub000/internal/models"
	th "github.com/t-murch/radio-wash-sub000/internal/testing"
)

func sampleJob() (*models.CleanJob, []*models.TrackMapping) {
	job := models.NewCleanJob(1, "u1", "p1", "Road Trip", "Road Trip (Clean)")
	job.SetID("job1")
	job.SetTotalTracks(3)
	job.SetProcessedTracks(3)
	job.SetMatchedTracks(2)
	job.Complete()

	matched := models.NewTrackMapping("job1", 0, models.Track{ID: "s1", Name: "Song One", Artists: []string{"Artist One"}, Explicit: true})
	matched.SetMatch(models.Track{ID: "c1", Name: "Song One", Artists: []string{"Artist One"}})

	clean := models.NewTrackMapping("job1", 1, models.Track{ID: "s2", Name: "Song Two", Artists: []string{"Artist Two"}})
	clean.SetMatch(models.Track{ID: "s2", Name: "Song Two", Artists: []string{"Artist Two"}})

	unmatched := models.NewTrackMapping("job1", 2, models.Track{ID: "s3", Name: "Song Three", Artists: []string{"Artist Three"}, Explicit: true})

	return job, []*models.TrackMapping{matched, clean, unmatched}
}

func TestMappingsToCSV(t *testing.T) {
	_, mappings := sampleJob()

	data, err := MappingsToCSV(mappings)
	if err != nil {
		t.Fatalf("MappingsToCSV failed: %v", err)
	}

	output := string(data)

	if !strings.Contains(output, "Position,Source ID,Source Track,Source Artist,Explicit,Matched,Clean ID,Clean Track") {
		t.Errorf("CSV missing headers, got: %s", output)
	}
	if !strings.Contains(output, "Song One") {
		t.Error("CSV missing matched track")
	}
	if !strings.Contains(output, "c1") {
		t.Error("CSV missing clean track ID")
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 4 {
		t.Errorf("expected header plus 3 rows, got %d lines", len(lines))
	}
}

func TestJobToMarkdown(t *testing.T) {
	job, mappings := sampleJob()

	data, err := JobToMarkdown(job, mappings)
	if err != nil {
		t.Fatalf("JobToMarkdown failed: %v", err)
	}

	output := string(data)

	if !strings.Contains(output, "# Road Trip (Clean)") {
		t.Errorf("Markdown missing title, got: %s", output)
	}
	if !strings.Contains(output, "**Matched**: 2 of 3 tracks") {
		t.Error("Markdown missing match summary")
	}
	if !strings.Contains(output, "(already clean)") {
		t.Error("Markdown missing already-clean marker")
	}
	if !strings.Contains(output, "(no clean version found)") {
		t.Error("Markdown missing unmatched marker")
	}
}

func TestJobToText(t *testing.T) {
	job, _ := sampleJob()

	output := string(JobToText(job))

	if !strings.Contains(output, "Job: job1") {
		t.Errorf("text missing job ID, got: %s", output)
	}
	if !strings.Contains(output, "Matched: 2/3") {
		t.Error("text missing match counts")
	}
}

func TestHistoryToText(t *testing.T) {
	completed := models.NewSyncHistory("cfg1", "job1")
	completed.SetCounts(2, 1, 10)
	completed.Finalize(models.SyncStatusCompleted, "")

	failed := models.NewSyncHistory("cfg1", "job1")
	failed.Finalize(models.SyncStatusFailed, "upstream down")

	output := string(HistoryToText([]*models.SyncHistory{completed, failed}))

	if !strings.Contains(output, "+2 -1 =10") {
		t.Errorf("text missing counts, got: %s", output)
	}
	if !strings.Contains(output, "error: upstream down") {
		t.Error("text missing failure message")
	}
}

func TestWriteJobReport(t *testing.T) {
	job, mappings := sampleJob()
	base := filepath.Join(t.TempDir(), "report")

	files, err := WriteJobReport(job, mappings, base)
	if err != nil {
		t.Fatalf("WriteJobReport failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	for _, f := range files {
		th.AssertFileExists(t, f)
	}

	md := th.MustReadFile(t, base+"_report.md")
	if !strings.Contains(md, "# Road Trip (Clean)") {
		t.Error("written Markdown missing title")
	}
}
