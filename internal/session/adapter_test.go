package session

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
)

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (failingKV) Set(string, string) error         { return errors.New("disk gone") }

func TestRecordScoreKeepsTopFive(t *testing.T) {
	kv := NewMemoryKV()
	a := NewAdapter(kv, nil)

	var board []int
	for _, s := range []int{30, 10, 80, 0, 50, 20, 60} {
		board = a.RecordScore(s)
	}
	want := []int{80, 60, 50, 30, 20}
	if !reflect.DeepEqual(board, want) {
		t.Errorf("RecordScore board = %v, expected %v", board, want)
	}
	if got := a.Leaderboard(); !reflect.DeepEqual(got, want) {
		t.Errorf("Leaderboard() = %v, expected %v", got, want)
	}

	raw, _, _ := kv.Get(KeyLeaderboard)
	if raw != "[80,60,50,30,20]" {
		t.Errorf("stored leaderboard = %q", raw)
	}
}

func TestHighScoreRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	a := NewAdapter(kv, nil)
	if a.LoadHighScore() != 0 {
		t.Fatal("empty store should read as 0")
	}
	a.SaveHighScore(140)
	if raw, _, _ := kv.Get(KeyHighScore); raw != "140" {
		t.Errorf("stored high score = %q", raw)
	}
	if a.LoadHighScore() != 140 {
		t.Errorf("LoadHighScore() = %d", a.LoadHighScore())
	}
}

func TestMalformedDataReadsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"high score text", KeyHighScore, "lots"},
		{"high score negative", KeyHighScore, "-5"},
		{"leaderboard garbage", KeyLeaderboard, "{not json"},
		{"leaderboard wrong type", KeyLeaderboard, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMemoryKV()
			kv.Set(tt.key, tt.value)
			a := NewAdapter(kv, nil)
			if a.LoadHighScore() != 0 {
				t.Errorf("LoadHighScore() = %d", a.LoadHighScore())
			}
			if len(a.Leaderboard()) != 0 {
				t.Errorf("Leaderboard() = %v", a.Leaderboard())
			}
		})
	}
}

func TestUnsortedStoredBoardIsNormalized(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(KeyLeaderboard, "[1,9,3,7,5,8]")
	a := NewAdapter(kv, nil)
	if got := a.Leaderboard(); !reflect.DeepEqual(got, []int{9, 8, 7, 5, 3}) {
		t.Errorf("Leaderboard() = %v", got)
	}
}

func TestMissingOrFailingStore(t *testing.T) {
	for name, kv := range map[string]KV{"nil": nil, "failing": failingKV{}} {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(kv, nil)
			a.SaveHighScore(10)
			if a.LoadHighScore() != 0 || len(a.Leaderboard()) != 0 {
				t.Error("unusable store should read as zero and empty")
			}
			if got := a.RecordScore(40); !reflect.DeepEqual(got, []int{40}) {
				t.Errorf("RecordScore still returns the computed board, got %v", got)
			}
		})
	}
}

func TestApply(t *testing.T) {
	a := NewAdapter(NewMemoryKV(), nil)
	a.SaveHighScore(100)

	a.Apply([]snake.Event{
		{Kind: snake.EventFoodEaten, Score: 50},
		{Kind: snake.EventHighScore, Score: 50},
	})
	if a.LoadHighScore() != 100 {
		t.Errorf("lower record overwrote stored high score: %d", a.LoadHighScore())
	}

	a.Apply([]snake.Event{{Kind: snake.EventHighScore, Score: 110}})
	if a.LoadHighScore() != 110 {
		t.Errorf("LoadHighScore() = %d, expected 110", a.LoadHighScore())
	}

	a.Apply([]snake.Event{{Kind: snake.EventGameOver, Score: 0}})
	a.Apply([]snake.Event{{Kind: snake.EventGameOver, Score: 110, Won: false}})
	if got := a.Leaderboard(); !reflect.DeepEqual(got, []int{110, 0}) {
		t.Errorf("Leaderboard() = %v, zero scores must be recorded too", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	a := NewAdapter(NewMemoryKV(), nil)
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			a.RecordScore(s * 10)
		}(i)
	}
	wg.Wait()
	if got := a.Leaderboard(); !reflect.DeepEqual(got, []int{200, 190, 180, 170, 160}) {
		t.Errorf("Leaderboard() = %v", got)
	}
}
