package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/gridstage/internal/event"
)

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save some scores
	_, err = store.SaveScore("maze", 100)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	_, err = store.SaveScore("maze", 50)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	_, err = store.SaveScore("maze", 200)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	// Different game
	_, err = store.SaveScore("sokoban", 500)
	if err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	// Retrieve top scores for maze
	scores, err := store.TopScores("maze", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	if scores[0].Score != 200 {
		t.Errorf("Expected highest score to be 200, got %d", scores[0].Score)
	}
	if scores[1].Score != 100 {
		t.Errorf("Expected second score to be 100, got %d", scores[1].Score)
	}
	if scores[2].Score != 50 {
		t.Errorf("Expected third score to be 50, got %d", scores[2].Score)
	}

	// Retrieve top scores for sokoban
	sokobanScores, err := store.TopScores("sokoban", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(sokobanScores) != 1 {
		t.Errorf("Expected 1 sokoban score, got %d", len(sokobanScores))
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Save 5 scores
	for i := 0; i < 5; i++ {
		store.SaveScore("test", (i+1)*100)
	}

	// Request only top 3
	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores with limit, got %d", len(scores))
	}

	// Should be 500, 400, 300 (top 3)
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}
}

func TestStoreHighScore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// No scores yet
	high, err := store.HighScore("maze")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	// Add scores
	store.SaveScore("maze", 100)
	store.SaveScore("maze", 300)
	store.SaveScore("maze", 200)

	high, err = store.HighScore("maze")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	store.SaveScore("maze", 100)
	store.SaveScore("maze", 200)
	store.SaveScore("sokoban", 300)

	// Clear only maze scores
	err = store.ClearScores("maze")
	if err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	// Maze should be empty
	mazeScores, _ := store.TopScores("maze", 10)
	if len(mazeScores) != 0 {
		t.Errorf("Expected 0 maze scores after clear, got %d", len(mazeScores))
	}

	// Sokoban should still have scores
	sokobanScores, _ := store.TopScores("sokoban", 10)
	if len(sokobanScores) != 1 {
		t.Errorf("Sokoban scores should not be affected by clearing maze")
	}
}

func TestStoreAllScores(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Add many scores
	for i := 0; i < 20; i++ {
		store.SaveScore("test", i*10)
	}

	scores, err := store.AllScores("test")
	if err != nil {
		t.Fatalf("AllScores() failed: %v", err)
	}

	if len(scores) != 20 {
		t.Errorf("Expected 20 scores, got %d", len(scores))
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	// Test that ~ expansion works (we won't actually write to home)
	// Just verify the function doesn't crash
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestStoreRecordResult(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := store.Record(Result{SceneID: "maze", Level: "classic", Score: 40, Played: 1500 * time.Millisecond}); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	scores, err := store.TopScores("maze", 1)
	if err != nil || len(scores) != 1 {
		t.Fatalf("TopScores() = %v, %v", scores, err)
	}
	got := scores[0]
	if got.Level != "classic" || got.Score != 40 || got.Played != 1500*time.Millisecond {
		t.Errorf("entry = %+v", got)
	}
}

func TestStoreAttachRecordsGameOver(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	d := event.NewDispatcher()
	id := store.Attach(d, nil)

	if err := d.Emit(EventGameOver, "maze", "classic", 120, 3*time.Second); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := d.Emit(EventGameOver, "maze", "classic", 0, time.Second); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	stats, err := store.GetSceneStats("maze")
	if err != nil {
		t.Fatalf("GetSceneStats() failed: %v", err)
	}
	if stats.RunsCount != 1 || stats.HighScore != 120 {
		t.Errorf("stats = %+v, expected one run of 120", stats)
	}

	d.Remove(id)
	//nolint:errcheck // no listeners left
	d.Emit(EventGameOver, "maze", "classic", 500, time.Second)
	if high, _ := store.HighScore("maze"); high != 120 {
		t.Errorf("HighScore() = %d after detaching, expected 120", high)
	}
}

func TestStoreAllScenesStats(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	//nolint:errcheck // checked through the stats below
	store.SaveScore("maze", 10)
	//nolint:errcheck // checked through the stats below
	store.SaveScore("maze", 30)
	//nolint:errcheck // checked through the stats below
	store.SaveScore("sokoban", 5)

	all, err := store.GetAllScenesStats()
	if err != nil {
		t.Fatalf("GetAllScenesStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAllScenesStats() = %d scenes, expected 2", len(all))
	}
	if m := all["maze"]; m.RunsCount != 2 || m.HighScore != 30 || m.AvgScore != 20 {
		t.Errorf("maze stats = %+v", m)
	}
}
