package task_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/calvinalkan/todo/internal/task"
)

func TestParsePriority(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in      string
		want    task.Priority
		wantErr bool
	}{
		{in: "low", want: task.PriorityLow},
		{in: " HIGH ", want: task.PriorityHigh},
		{in: "Medium", want: task.PriorityMedium},
		{in: "urgent", wantErr: true},
		{in: "", wantErr: true},
	} {
		got, err := task.ParsePriority(tt.in)
		if tt.wantErr {
			if !errors.Is(err, task.ErrValidation) {
				t.Errorf("ParsePriority(%q) err = %v, want ErrValidation", tt.in, err)
			}

			continue
		}

		if err != nil || got != tt.want {
			t.Errorf("ParsePriority(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestPriority_Rank(t *testing.T) {
	t.Parallel()

	if !(task.PriorityHigh.Rank() > task.PriorityMedium.Rank() && task.PriorityMedium.Rank() > task.PriorityLow.Rank()) {
		t.Fatal("ranks must order high > medium > low")
	}

	if task.Priority("bogus").Rank() != 0 {
		t.Fatal("unknown priority must rank 0")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		in string
		ok bool
	}{
		{in: "2024-02-29", ok: true},
		{in: " 2099-01-01 ", ok: true},
		{in: "2023-02-29", ok: false},
		{in: "01/02/2024", ok: false},
		{in: "", ok: false},
	} {
		_, err := task.ParseDate(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseDate(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
		}
	}
}

func TestTask_JSONUsesPersistedFieldNames(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(task.Task{
		ID:       1700000000000,
		Title:    "Buy milk",
		DueDate:  "2099-01-01",
		Priority: task.PriorityLow,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := `{"id":1700000000000,"title":"Buy milk","description":"","dueDate":"2099-01-01","priority":"low","completed":false}`
	if string(data) != want {
		t.Fatalf("got  %s\nwant %s", data, want)
	}
}

func TestTask_ExtraFieldsCannotShadowKnownFields(t *testing.T) {
	t.Parallel()

	in := task.Task{
		ID:    3,
		Title: "real",
		Extra: map[string]json.RawMessage{"title": json.RawMessage(`"shadow"`), "color": json.RawMessage(`"red"`)},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}

	var out task.Task
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}

	if out.Title != "real" || string(out.Extra["color"]) != `"red"` {
		t.Fatalf("got %+v", out)
	}
}
