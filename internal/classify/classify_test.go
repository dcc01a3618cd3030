package classify

import (
	"testing"

	"github.com/spiffcs/lockstale/internal/model"
)

func thread(n int, kind model.ThreadKind) model.Thread {
	return model.Thread{Number: n, Kind: kind}
}

func numbers(ts []model.Thread) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.Number
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name             string
		input            []model.Thread
		wantIssues       []int
		wantPRs          []int
		wantUnrecognized []int
	}{
		{
			name:  "empty",
			input: nil,
		},
		{
			name: "mixed keeps order",
			input: []model.Thread{
				thread(5, model.KindPullRequest),
				thread(1, model.KindIssue),
				thread(9, model.KindIssue),
				thread(2, model.KindPullRequest),
			},
			wantIssues: []int{1, 9},
			wantPRs:    []int{5, 2},
		},
		{
			name: "unknown kinds are set aside",
			input: []model.Thread{
				thread(1, model.KindIssue),
				thread(2, "Discussion"),
				thread(3, ""),
			},
			wantIssues:       []int{1},
			wantUnrecognized: []int{2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Split(tt.input)

			if got := numbers(p.Issues); !equalInts(got, tt.wantIssues) {
				t.Errorf("Issues = %v, want %v", got, tt.wantIssues)
			}
			if got := numbers(p.PullRequests); !equalInts(got, tt.wantPRs) {
				t.Errorf("PullRequests = %v, want %v", got, tt.wantPRs)
			}
			if got := numbers(p.Unrecognized); !equalInts(got, tt.wantUnrecognized) {
				t.Errorf("Unrecognized = %v, want %v", got, tt.wantUnrecognized)
			}
			if p.Total() != len(tt.input) {
				t.Errorf("Total() = %d, want %d", p.Total(), len(tt.input))
			}
		})
	}
}

func TestSplitIsDisjoint(t *testing.T) {
	input := []model.Thread{
		thread(1, model.KindIssue),
		thread(2, model.KindPullRequest),
		thread(3, model.KindIssue),
		thread(4, "Commit"),
	}
	p := Split(input)

	seen := make(map[int]int)
	for _, ts := range [][]model.Thread{p.Issues, p.PullRequests, p.Unrecognized} {
		for _, th := range ts {
			seen[th.Number]++
		}
	}
	for _, th := range input {
		if seen[th.Number] != 1 {
			t.Errorf("thread #%d appears %d times", th.Number, seen[th.Number])
		}
	}
}

func TestSplitDoesNotMutateInput(t *testing.T) {
	input := []model.Thread{thread(1, model.KindPullRequest), thread(2, model.KindIssue)}
	Split(input)
	if input[0].Number != 1 || input[1].Number != 2 {
		t.Errorf("input was reordered: %v", numbers(input))
	}
}

func TestForCategory(t *testing.T) {
	p := Split([]model.Thread{thread(1, model.KindIssue), thread(2, model.KindPullRequest)})
	if got := numbers(p.ForCategory(model.CategoryIssues)); !equalInts(got, []int{1}) {
		t.Errorf("issues = %v", got)
	}
	if got := numbers(p.ForCategory(model.CategoryPullRequests)); !equalInts(got, []int{2}) {
		t.Errorf("pull requests = %v", got)
	}
}
